package booksvc

import (
	"context"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/paging"
)

type Book = model.Book

type Repo interface {
	Get(ctx context.Context, id string) (model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
}

// Page is one page of a catalog listing.
type Page struct {
	Items []Book `json:"items"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int    `json:"total"`
}

type Stats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Rented    int `json:"rented"`
	Reserved  int `json:"reserved"`
}

type Service interface {
	// List filters by state when state is non-empty.
	List(ctx context.Context, state model.StateKind, page int) (*Page, error)
	Detail(ctx context.Context, id string) (*Book, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, state model.StateKind, page int) (*Page, error) {
	switch state {
	case "", model.StateAvailable, model.StateRented, model.StateReserved:
	default:
		return nil, apperr.Newf(apperr.ErrBadInput, "unknown state %q", state)
	}
	if page < 1 {
		page = 1
	}
	all, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	books := all
	if state != "" {
		books = make([]Book, 0, len(all))
		for _, b := range all {
			if b.Status.Kind() == state {
				books = append(books, b)
			}
		}
	}
	return &Page{
		Items: paging.Slice(books, page),
		Page:  page,
		Pages: paging.Pages(len(books)),
		Total: len(books),
	}, nil
}

func (s *service) Detail(ctx context.Context, id string) (*Book, error) {
	b, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Total: len(all)}
	for _, b := range all {
		switch b.Status.(type) {
		case model.Available:
			st.Available++
		case model.Rented:
			st.Rented++
		case model.Reserved:
			st.Reserved++
		}
	}
	return st, nil
}
