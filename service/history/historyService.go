package historysvc

import (
	"context"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	catalogrepo "github.com/felipe-nonato/Saber-IFPB/repository/catalog"
	historyrepo "github.com/felipe-nonato/Saber-IFPB/repository/history"
	rentalrepo "github.com/felipe-nonato/Saber-IFPB/repository/rental"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/paging"

	"github.com/google/uuid"
)

type Service interface {
	// Record appends a reading record. Ratings run from 1 to 5.
	Record(ctx context.Context, userID, bookID string, rating int, at time.Time) (model.ReadingRecord, error)
	// Read lists the books a user rated, newest first, one entry per book
	// carrying the most recent rating.
	Read(ctx context.Context, userID string, page int) ([]model.ReadEntry, error)
	// Returned lists the user's closed rentals with their books, newest first.
	Returned(ctx context.Context, userID string, page int) ([]model.ReturnedRental, error)
}

type service struct {
	records historyrepo.Repo
	rentals rentalrepo.Repo
	catalog catalogrepo.Repo
}

func New(records historyrepo.Repo, rentals rentalrepo.Repo, catalog catalogrepo.Repo) Service {
	return &service{records: records, rentals: rentals, catalog: catalog}
}

func (s *service) Record(ctx context.Context, userID, bookID string, rating int, at time.Time) (model.ReadingRecord, error) {
	if userID == "" {
		return model.ReadingRecord{}, apperr.New(apperr.ErrUnauthenticated, "missing user")
	}
	if rating < 1 || rating > 5 {
		return model.ReadingRecord{}, apperr.Newf(apperr.ErrBadInput, "rating %d outside 1..5", rating)
	}
	rec := model.ReadingRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		BookID:      bookID,
		Rating:      rating,
		CompletedAt: at.UTC(),
	}
	if err := s.records.Append(ctx, rec); err != nil {
		return model.ReadingRecord{}, err
	}
	return rec, nil
}

func (s *service) Read(ctx context.Context, userID string, page int) ([]model.ReadEntry, error) {
	if userID == "" {
		return nil, apperr.New(apperr.ErrUnauthenticated, "missing user")
	}
	recs, err := s.records.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(recs))
	var latest []model.ReadingRecord
	for _, rec := range recs {
		if !seen[rec.BookID] {
			seen[rec.BookID] = true
			latest = append(latest, rec)
		}
	}

	out := []model.ReadEntry{}
	for _, rec := range paging.Slice(latest, page) {
		b, err := s.catalog.Get(ctx, rec.BookID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ReadEntry{
			BookID:    b.ID,
			ISBN:      b.ISBN,
			Title:     b.Title,
			Thumbnail: b.Cover,
			Rating:    rec.Rating,
		})
	}
	return out, nil
}

func (s *service) Returned(ctx context.Context, userID string, page int) ([]model.ReturnedRental, error) {
	if userID == "" {
		return nil, apperr.New(apperr.ErrUnauthenticated, "missing user")
	}
	rentals, err := s.rentals.ListReturnedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []model.ReturnedRental{}
	for _, rt := range paging.Slice(rentals, page) {
		b, err := s.catalog.Get(ctx, rt.BookID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ReturnedRental{Rental: rt, Book: b})
	}
	return out, nil
}
