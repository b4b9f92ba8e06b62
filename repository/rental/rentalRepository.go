package rentalrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/database"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

type Repo interface {
	// Insert opens a rental. A second open rental for the same book is CONFLICT.
	Insert(ctx context.Context, r model.Rental) error
	// OpenForBook returns nil when the book has no open rental.
	OpenForBook(ctx context.Context, bookID string) (*model.Rental, error)
	// Close records returned-at, late days and penalty on an open rental.
	Close(ctx context.Context, r model.Rental) error
	// ListReturnedByUser is ordered by returned-at, newest first.
	ListReturnedByUser(ctx context.Context, userID string) ([]model.Rental, error)
	ListOpen(ctx context.Context) ([]model.Rental, error)
}

const table = "rentals"

var columns = []any{"id", "book_id", "user_id", "started_at", "due_at", "returned_at", "cost", "late_days", "penalty"}

type repo struct {
	db *database.DB
}

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, rt model.Rental) error {
	q, args, err := database.Dialect().Insert(table).Rows(goqu.Record{
		"id":         rt.ID,
		"book_id":    rt.BookID,
		"user_id":    rt.UserID,
		"started_at": rt.StartedAt,
		"due_at":     rt.DueAt,
		"cost":       rt.Cost,
	}).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if _, err := r.db.Q(ctx).Exec(ctx, q, args...); err != nil {
		if database.IsUniqueViolation(err, "rentals_one_open_per_book") {
			return apperr.Newf(apperr.ErrConflict, "book %s already has an open rental", rt.BookID)
		}
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

func (r *repo) OpenForBook(ctx context.Context, bookID string) (*model.Rental, error) {
	q, args, err := database.Dialect().From(table).Select(columns...).
		Where(goqu.C("book_id").Eq(bookID), goqu.C("returned_at").IsNull()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rt, err := scanRental(r.db.Q(ctx).QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *repo) Close(ctx context.Context, rt model.Rental) error {
	if rt.ReturnedAt == nil {
		return apperr.New(apperr.ErrBadInput, "close without returned-at")
	}
	q, args, err := database.Dialect().Update(table).Set(goqu.Record{
		"returned_at": *rt.ReturnedAt,
		"late_days":   rt.LateDays,
		"penalty":     rt.Penalty,
	}).Where(goqu.C("id").Eq(rt.ID), goqu.C("returned_at").IsNull()).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	tag, err := r.db.Q(ctx).Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("close rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.ErrNoOpenRental, "rental %s", rt.ID)
	}
	return nil
}

func (r *repo) ListReturnedByUser(ctx context.Context, userID string) ([]model.Rental, error) {
	return r.list(ctx, database.Dialect().From(table).Select(columns...).
		Where(goqu.C("user_id").Eq(userID), goqu.C("returned_at").IsNotNull()).
		Order(goqu.C("returned_at").Desc()))
}

func (r *repo) ListOpen(ctx context.Context) ([]model.Rental, error) {
	return r.list(ctx, database.Dialect().From(table).Select(columns...).
		Where(goqu.C("returned_at").IsNull()).
		Order(goqu.C("due_at").Asc()))
}

func (r *repo) list(ctx context.Context, ds *goqu.SelectDataset) ([]model.Rental, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func scanRental(row pgx.Row) (model.Rental, error) {
	var rt model.Rental
	err := row.Scan(&rt.ID, &rt.BookID, &rt.UserID, &rt.StartedAt, &rt.DueAt, &rt.ReturnedAt,
		&rt.Cost, &rt.LateDays, &rt.Penalty)
	if err != nil {
		return model.Rental{}, err
	}
	rt.StartedAt, rt.DueAt = rt.StartedAt.UTC(), rt.DueAt.UTC()
	if rt.ReturnedAt != nil {
		at := rt.ReturnedAt.UTC()
		rt.ReturnedAt = &at
	}
	return rt, nil
}
