package historysvc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	catalogrepo "github.com/felipe-nonato/Saber-IFPB/repository/catalog"
	historyrepo "github.com/felipe-nonato/Saber-IFPB/repository/history"
	rentalrepo "github.com/felipe-nonato/Saber-IFPB/repository/rental"
	historysvc "github.com/felipe-nonato/Saber-IFPB/service/history"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/stretchr/testify/require"
)

type historyMock struct {
	appendFn      func(ctx context.Context, rec model.ReadingRecord) error
	listForUserFn func(ctx context.Context, userID string) ([]model.ReadingRecord, error)
}

var _ historyrepo.Repo = (*historyMock)(nil)

func (m *historyMock) Append(ctx context.Context, rec model.ReadingRecord) error {
	return m.appendFn(ctx, rec)
}
func (m *historyMock) ListForUser(ctx context.Context, userID string) ([]model.ReadingRecord, error) {
	return m.listForUserFn(ctx, userID)
}
func (m *historyMock) ListAll(ctx context.Context) ([]model.ReadingRecord, error) { return nil, nil }

var t0 = time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

func TestRecord_Validation(t *testing.T) {
	s := historysvc.New(historyrepo.NewMemory(), rentalrepo.NewMemory(), catalogrepo.NewMemory())
	ctx := context.Background()

	_, err := s.Record(ctx, "", "b1", 3, t0)
	require.True(t, apperr.Is(err, apperr.ErrUnauthenticated))
	for _, r := range []int{0, 6, -1} {
		_, err := s.Record(ctx, "u1", "b1", r, t0)
		require.True(t, apperr.Is(err, apperr.ErrBadInput), "rating %d", r)
	}
	rec, err := s.Record(ctx, "u1", "b1", 5, t0)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, 5, rec.Rating)
}

func TestRecord_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	m := &historyMock{appendFn: func(ctx context.Context, rec model.ReadingRecord) error { return boom }}
	s := historysvc.New(m, rentalrepo.NewMemory(), catalogrepo.NewMemory())

	_, err := s.Record(context.Background(), "u1", "b1", 4, t0)
	require.ErrorIs(t, err, boom)
}

func TestRead_LatestRatingPerBookAndPaging(t *testing.T) {
	ctx := context.Background()
	catalog := catalogrepo.NewMemory()
	s := historysvc.New(historyrepo.NewMemory(), rentalrepo.NewMemory(), catalog)

	var books []model.Book
	for i := 0; i < 10; i++ {
		b, err := catalog.Create(ctx, "dep", model.NewBook{Title: fmt.Sprintf("book %d", i), Author: "a", ISBN: fmt.Sprintf("isbn-%d", i), Cover: "c.png"})
		require.NoError(t, err)
		books = append(books, b)
		_, err = s.Record(ctx, "u1", b.ID, 3, t0.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	// a later correction for the first book moves it to the top
	_, err := s.Record(ctx, "u1", books[0].ID, 5, t0.Add(24*time.Hour))
	require.NoError(t, err)

	page1, err := s.Read(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, page1, 8)
	require.Equal(t, books[0].ID, page1[0].BookID)
	require.Equal(t, 5, page1[0].Rating)
	require.Equal(t, "isbn-0", page1[0].ISBN)
	require.Equal(t, "c.png", page1[0].Thumbnail)
	require.Equal(t, books[9].ID, page1[1].BookID)

	page2, err := s.Read(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)

	empty, err := s.Read(ctx, "u2", 1)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestReturned_JoinsBooks(t *testing.T) {
	ctx := context.Background()
	catalog := catalogrepo.NewMemory()
	rentals := rentalrepo.NewMemory()
	s := historysvc.New(historyrepo.NewMemory(), rentals, catalog)

	b, err := catalog.Create(ctx, "dep", model.NewBook{Title: "Macunaíma", Author: "Mário de Andrade"})
	require.NoError(t, err)
	rt := model.Rental{ID: "r1", BookID: b.ID, UserID: "u1", StartedAt: t0, DueAt: t0.Add(time.Hour)}
	require.NoError(t, rentals.Insert(ctx, rt))

	open, err := s.Returned(ctx, "u1", 1)
	require.NoError(t, err)
	require.Empty(t, open)

	at := t0.Add(time.Hour)
	rt.ReturnedAt = &at
	require.NoError(t, rentals.Close(ctx, rt))

	out, err := s.Returned(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Macunaíma", out[0].Book.Title)
	require.True(t, at.Equal(*out[0].Rental.ReturnedAt))

	_, err = s.Returned(ctx, "", 1)
	require.True(t, apperr.Is(err, apperr.ErrUnauthenticated))
}
