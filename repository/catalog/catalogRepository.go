package catalogrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/database"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repo interface {
	// Create stores a new Available book. A duplicate ISBN is CONFLICT.
	Create(ctx context.Context, depositorID string, in model.NewBook) (model.Book, error)
	Get(ctx context.Context, id string) (model.Book, error)
	// List returns every book in insertion order.
	List(ctx context.Context) ([]model.Book, error)
	SetState(ctx context.Context, id string, st model.BookState) error
}

const table = "books"

var columns = []any{
	"id", "seq", "title", "author", "category", "isbn", "synopsis", "cover",
	"published_year", "pages", "depositor_id", "state", "holder_id", "due_at",
	"hold_until", "created_at",
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, depositorID string, in model.NewBook) (model.Book, error) {
	b := model.Book{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Author:      in.Author,
		Category:    in.Category,
		ISBN:        in.ISBN,
		Synopsis:    in.Synopsis,
		Cover:       in.Cover,
		Year:        in.Year,
		Pages:       in.Pages,
		DepositorID: depositorID,
		Status:      model.Available{},
		CreatedAt:   time.Now().UTC(),
	}
	q, args, err := database.Dialect().Insert(table).Rows(goqu.Record{
		"id":             b.ID,
		"title":          b.Title,
		"author":         b.Author,
		"category":       database.Nullable(b.Category),
		"isbn":           database.Nullable(b.ISBN),
		"synopsis":       database.Nullable(b.Synopsis),
		"cover":          database.Nullable(b.Cover),
		"published_year": database.Nullable(b.Year),
		"pages":          database.Nullable(b.Pages),
		"depositor_id":   b.DepositorID,
		"state":          string(model.StateAvailable),
		"created_at":     b.CreatedAt,
	}).Returning("seq").Prepared(true).ToSQL()
	if err != nil {
		return model.Book{}, err
	}
	if err := r.db.Q(ctx).QueryRow(ctx, q, args...).Scan(&b.Seq); err != nil {
		if database.IsUniqueViolation(err, "books_isbn_key") {
			return model.Book{}, apperr.Newf(apperr.ErrConflict, "isbn %s already catalogued", b.ISBN)
		}
		return model.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (r *repo) Get(ctx context.Context, id string) (model.Book, error) {
	q, args, err := database.Dialect().From(table).Select(columns...).
		Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return model.Book{}, err
	}
	b, err := scanBook(r.db.Q(ctx).QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Book{}, apperr.Newf(apperr.ErrNotFound, "book %s", id)
	}
	return b, err
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	q, args, err := database.Dialect().From(table).Select(columns...).
		Order(goqu.I("seq").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) SetState(ctx context.Context, id string, st model.BookState) error {
	row := model.FlattenState(st)
	q, args, err := database.Dialect().Update(table).Set(goqu.Record{
		"state":      string(row.Kind),
		"holder_id":  database.Deref(row.Holder),
		"due_at":     database.Deref(row.DueAt),
		"hold_until": database.Deref(row.HoldUntil),
	}).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	tag, err := r.db.Q(ctx).Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.ErrNotFound, "book %s", id)
	}
	return nil
}

func scanBook(row pgx.Row) (model.Book, error) {
	var (
		b                               model.Book
		category, isbn, synopsis, cover *string
		year, pages                     *int
		state                           model.StateRow
		kind                            string
	)
	err := row.Scan(&b.ID, &b.Seq, &b.Title, &b.Author, &category, &isbn, &synopsis, &cover,
		&year, &pages, &b.DepositorID, &kind, &state.Holder, &state.DueAt, &state.HoldUntil, &b.CreatedAt)
	if err != nil {
		return model.Book{}, err
	}
	state.Kind = model.StateKind(kind)
	if b.Status, err = state.State(); err != nil {
		return model.Book{}, fmt.Errorf("book %s: %w", b.ID, err)
	}
	b.Category, b.ISBN, b.Synopsis, b.Cover = str(category), str(isbn), str(synopsis), str(cover)
	if year != nil {
		b.Year = *year
	}
	if pages != nil {
		b.Pages = *pages
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
