//go:build integration

package database_test

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	catalogrepo "github.com/felipe-nonato/Saber-IFPB/repository/catalog"
	historyrepo "github.com/felipe-nonato/Saber-IFPB/repository/history"
	"github.com/felipe-nonato/Saber-IFPB/repository/locker"
	rentalrepo "github.com/felipe-nonato/Saber-IFPB/repository/rental"
	reservationrepo "github.com/felipe-nonato/Saber-IFPB/repository/reservation"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	if exec.Command("docker", "info").Run() != nil {
		t.Skip("docker not available")
	}
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "saber",
				"POSTGRES_PASSWORD": "saber",
				"POSTGRES_DB":       "saber",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.New(ctx, fmt.Sprintf("postgres://saber:saber@%s:%s/saber?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migration is repeatable")
	return db
}

func TestPostgres_Repositories(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	t0 := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	catalog := catalogrepo.New(db)
	rentals := rentalrepo.New(db)
	queue := reservationrepo.New(db)
	history := historyrepo.New(db)

	t.Run("catalog", func(t *testing.T) {
		b, err := catalog.Create(ctx, "dep", model.NewBook{Title: "Iracema", Author: "José de Alencar", ISBN: "isbn-1", Year: 1865})
		require.NoError(t, err)
		require.Positive(t, b.Seq)

		_, err = catalog.Create(ctx, "dep", model.NewBook{Title: "Copy", Author: "x", ISBN: "isbn-1"})
		require.True(t, apperr.Is(err, apperr.ErrConflict))

		due := t0.Add(14 * 24 * time.Hour)
		require.NoError(t, catalog.SetState(ctx, b.ID, model.Rented{Holder: "u1", DueAt: due}))
		got, err := catalog.Get(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, model.Rented{Holder: "u1", DueAt: due}, got.Status)
		require.Equal(t, 1865, got.Year)

		require.NoError(t, catalog.SetState(ctx, b.ID, model.Available{}))
		got, err = catalog.Get(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, model.Available{}, got.Status)

		_, err = catalog.Get(ctx, "missing")
		require.True(t, apperr.Is(err, apperr.ErrNotFound))
	})

	b, err := catalog.Create(ctx, "dep", model.NewBook{Title: "O Cortiço", Author: "Aluísio Azevedo"})
	require.NoError(t, err)

	t.Run("rentals", func(t *testing.T) {
		rt := model.Rental{ID: "r1", BookID: b.ID, UserID: "u1", StartedAt: t0, DueAt: t0.Add(time.Hour), Cost: 14}
		require.NoError(t, rentals.Insert(ctx, rt))
		err := rentals.Insert(ctx, model.Rental{ID: "r2", BookID: b.ID, UserID: "u2", StartedAt: t0, DueAt: t0})
		require.True(t, apperr.Is(err, apperr.ErrConflict))

		open, err := rentals.OpenForBook(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, "r1", open.ID)

		ret := t0.Add(30 * time.Hour)
		rt.ReturnedAt, rt.LateDays, rt.Penalty = &ret, 2, 4
		require.NoError(t, rentals.Close(ctx, rt))
		require.True(t, apperr.Is(rentals.Close(ctx, rt), apperr.ErrNoOpenRental))

		list, err := rentals.ListReturnedByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, 4, list[0].Penalty)
	})

	t.Run("reservations", func(t *testing.T) {
		for _, u := range []string{"u2", "u3", "u4"} {
			_, created, err := queue.Enqueue(ctx, b.ID, u, t0)
			require.NoError(t, err)
			require.True(t, created)
		}
		_, created, err := queue.Enqueue(ctx, b.ID, "u3", t0.Add(time.Hour))
		require.NoError(t, err)
		require.False(t, created)

		ok, err := queue.Remove(ctx, b.ID, "u3")
		require.NoError(t, err)
		require.True(t, ok)

		head, err := queue.DequeueHead(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, "u2", head.UserID)
		head, err = queue.Peek(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, "u4", head.UserID)

		mine, err := queue.ListForUser(ctx, "u4")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		require.Equal(t, b.ID, mine[0].BookID)
	})

	t.Run("history", func(t *testing.T) {
		require.NoError(t, history.Append(ctx, model.ReadingRecord{ID: "h1", UserID: "u1", BookID: b.ID, Rating: 4, CompletedAt: t0}))
		require.NoError(t, history.Append(ctx, model.ReadingRecord{ID: "h2", UserID: "u1", BookID: b.ID, Rating: 5, CompletedAt: t0.Add(time.Hour)}))
		recs, err := history.ListForUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "h2", recs[0].ID)
	})
}

func TestPostgres_AdvisoryLockRollsBack(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	catalog := catalogrepo.New(db)
	l := locker.New(db)

	b, err := catalog.Create(ctx, "dep", model.NewBook{Title: "t", Author: "a"})
	require.NoError(t, err)

	boom := fmt.Errorf("boom")
	err = l.WithLock(ctx, b.ID, func(ctx context.Context) error {
		require.NoError(t, catalog.SetState(ctx, b.ID, model.Rented{Holder: "u1", DueAt: time.Now()}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := catalog.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, model.Available{}, got.Status)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_ = l.WithLock(ctx, b.ID, func(ctx context.Context) error {
				cur, err := catalog.Get(ctx, b.ID)
				if err != nil || cur.Status.Kind() != model.StateAvailable {
					return err
				}
				if err := catalog.SetState(ctx, b.ID, model.Rented{Holder: user, DueAt: time.Now()}); err != nil {
					return err
				}
				mu.Lock()
				wins++
				mu.Unlock()
				return nil
			})
		}(fmt.Sprintf("u%d", i))
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}
