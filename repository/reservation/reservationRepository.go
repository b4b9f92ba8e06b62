package reservationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/database"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repo is a per-book FIFO of waiting users. Order is queued-at ascending with
// insertion order breaking ties. A user appears at most once per book.
type Repo interface {
	// Enqueue appends the user. When already queued the existing entry is
	// returned with created=false.
	Enqueue(ctx context.Context, bookID, userID string, at time.Time) (res model.Reservation, created bool, err error)
	// DequeueHead removes and returns the head, or nil for an empty queue.
	DequeueHead(ctx context.Context, bookID string) (*model.Reservation, error)
	Peek(ctx context.Context, bookID string) (*model.Reservation, error)
	Remove(ctx context.Context, bookID, userID string) (bool, error)
	List(ctx context.Context, bookID string) ([]model.Reservation, error)
	// ListForUser returns every queue entry of the user, oldest first.
	ListForUser(ctx context.Context, userID string) ([]model.Reservation, error)
}

const table = "reservations"

var columns = []any{"id", "book_id", "user_id", "queued_at", "seq"}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Enqueue(ctx context.Context, bookID, userID string, at time.Time) (model.Reservation, bool, error) {
	res := model.Reservation{ID: uuid.NewString(), BookID: bookID, UserID: userID, QueuedAt: at.UTC()}
	q, args, err := database.Dialect().Insert(table).Rows(goqu.Record{
		"id":        res.ID,
		"book_id":   bookID,
		"user_id":   userID,
		"queued_at": res.QueuedAt,
	}).OnConflict(goqu.DoNothing()).Returning("seq").Prepared(true).ToSQL()
	if err != nil {
		return model.Reservation{}, false, err
	}
	err = r.db.Q(ctx).QueryRow(ctx, q, args...).Scan(&res.Seq)
	switch {
	case err == nil:
		return res, true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return model.Reservation{}, false, fmt.Errorf("enqueue: %w", err)
	}

	existing, err := r.one(ctx, r.fifo(bookID).Where(goqu.C("user_id").Eq(userID)))
	if err != nil {
		return model.Reservation{}, false, err
	}
	if existing == nil {
		return model.Reservation{}, false, fmt.Errorf("enqueue: reservation for %s vanished", userID)
	}
	return *existing, false, nil
}

func (r *repo) DequeueHead(ctx context.Context, bookID string) (*model.Reservation, error) {
	head := database.Dialect().From(table).Select("id").
		Where(goqu.C("book_id").Eq(bookID)).
		Order(goqu.C("queued_at").Asc(), goqu.C("seq").Asc()).
		Limit(1)
	q, args, err := database.Dialect().Delete(table).
		Where(goqu.C("id").In(head)).
		Returning(columns...).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	res, err := scanReservation(r.db.Q(ctx).QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	return &res, nil
}

func (r *repo) Peek(ctx context.Context, bookID string) (*model.Reservation, error) {
	return r.one(ctx, r.fifo(bookID).Limit(1))
}

func (r *repo) Remove(ctx context.Context, bookID, userID string) (bool, error) {
	q, args, err := database.Dialect().Delete(table).
		Where(goqu.C("book_id").Eq(bookID), goqu.C("user_id").Eq(userID)).
		Prepared(true).ToSQL()
	if err != nil {
		return false, err
	}
	tag, err := r.db.Q(ctx).Exec(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("remove reservation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) List(ctx context.Context, bookID string) ([]model.Reservation, error) {
	return r.many(ctx, r.fifo(bookID))
}

func (r *repo) ListForUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	return r.many(ctx, database.Dialect().From(table).Select(columns...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("queued_at").Asc(), goqu.C("seq").Asc()))
}

func (r *repo) many(ctx context.Context, ds *goqu.SelectDataset) ([]model.Reservation, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *repo) fifo(bookID string) *goqu.SelectDataset {
	return database.Dialect().From(table).Select(columns...).
		Where(goqu.C("book_id").Eq(bookID)).
		Order(goqu.C("queued_at").Asc(), goqu.C("seq").Asc())
}

func (r *repo) one(ctx context.Context, ds *goqu.SelectDataset) (*model.Reservation, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	res, err := scanReservation(r.db.Q(ctx).QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var res model.Reservation
	if err := row.Scan(&res.ID, &res.BookID, &res.UserID, &res.QueuedAt, &res.Seq); err != nil {
		return model.Reservation{}, err
	}
	res.QueuedAt = res.QueuedAt.UTC()
	return res, nil
}
