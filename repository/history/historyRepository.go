package historyrepo

import (
	"context"
	"fmt"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/database"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

// Repo is append-only: records are never updated or deleted.
type Repo interface {
	Append(ctx context.Context, rec model.ReadingRecord) error
	// ListForUser is ordered by completed-at, newest first.
	ListForUser(ctx context.Context, userID string) ([]model.ReadingRecord, error)
	ListAll(ctx context.Context) ([]model.ReadingRecord, error)
}

const table = "reading_records"

var columns = []any{"id", "user_id", "book_id", "rating", "completed_at"}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Append(ctx context.Context, rec model.ReadingRecord) error {
	q, args, err := database.Dialect().Insert(table).Rows(goqu.Record{
		"id":           rec.ID,
		"user_id":      rec.UserID,
		"book_id":      rec.BookID,
		"rating":       rec.Rating,
		"completed_at": rec.CompletedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if _, err := r.db.Q(ctx).Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("append reading record: %w", err)
	}
	return nil
}

func (r *repo) ListForUser(ctx context.Context, userID string) ([]model.ReadingRecord, error) {
	return r.list(ctx, database.Dialect().From(table).Select(columns...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("completed_at").Desc(), goqu.C("seq").Desc()))
}

func (r *repo) ListAll(ctx context.Context) ([]model.ReadingRecord, error) {
	return r.list(ctx, database.Dialect().From(table).Select(columns...).Order(goqu.C("seq").Asc()))
}

func (r *repo) list(ctx context.Context, ds *goqu.SelectDataset) ([]model.ReadingRecord, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reading records: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ReadingRecord, error) {
		var rec model.ReadingRecord
		err := row.Scan(&rec.ID, &rec.UserID, &rec.BookID, &rec.Rating, &rec.CompletedAt)
		rec.CompletedAt = rec.CompletedAt.UTC()
		return rec, err
	})
}
