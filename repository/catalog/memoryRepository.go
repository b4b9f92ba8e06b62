package catalogrepo

import (
	"context"
	"sync"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/google/uuid"
)

type memory struct {
	mu     sync.RWMutex
	books  map[string]model.Book
	order  []string
	isbns  map[string]string
	seq    int64
	nowFun func() time.Time
}

// NewMemory returns a process-local catalog.
func NewMemory() Repo {
	return &memory{
		books:  make(map[string]model.Book),
		isbns:  make(map[string]string),
		nowFun: func() time.Time { return time.Now().UTC() },
	}
}

func (m *memory) Create(_ context.Context, depositorID string, in model.NewBook) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if in.ISBN != "" {
		if _, taken := m.isbns[in.ISBN]; taken {
			return model.Book{}, apperr.Newf(apperr.ErrConflict, "isbn %s already catalogued", in.ISBN)
		}
	}
	m.seq++
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
		Seq:         m.seq,
		CreatedAt:   m.nowFun(),
	}
	m.books[b.ID] = b
	m.order = append(m.order, b.ID)
	if b.ISBN != "" {
		m.isbns[b.ISBN] = b.ID
	}
	return b, nil
}

func (m *memory) Get(_ context.Context, id string) (model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return model.Book{}, apperr.Newf(apperr.ErrNotFound, "book %s", id)
	}
	return b, nil
}

func (m *memory) List(_ context.Context) ([]model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Book, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.books[id])
	}
	return out, nil
}

func (m *memory) SetState(_ context.Context, id string, st model.BookState) error {
	if st == nil {
		return apperr.New(apperr.ErrBadInput, "nil book state")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return apperr.Newf(apperr.ErrNotFound, "book %s", id)
	}
	b.Status = st
	m.books[id] = b
	return nil
}
