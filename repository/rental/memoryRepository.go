package rentalrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
)

type memory struct {
	mu      sync.RWMutex
	rentals map[string]model.Rental
	order   []string
	open    map[string]string // book id -> open rental id
}

func NewMemory() Repo {
	return &memory{
		rentals: make(map[string]model.Rental),
		open:    make(map[string]string),
	}
}

func (m *memory) Insert(_ context.Context, rt model.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.open[rt.BookID]; busy {
		return apperr.Newf(apperr.ErrConflict, "book %s already has an open rental", rt.BookID)
	}
	rt.ReturnedAt = nil
	m.rentals[rt.ID] = rt
	m.order = append(m.order, rt.ID)
	m.open[rt.BookID] = rt.ID
	return nil
}

func (m *memory) OpenForBook(_ context.Context, bookID string) (*model.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.open[bookID]
	if !ok {
		return nil, nil
	}
	rt := m.rentals[id]
	return &rt, nil
}

func (m *memory) Close(_ context.Context, rt model.Rental) error {
	if rt.ReturnedAt == nil {
		return apperr.New(apperr.ErrBadInput, "close without returned-at")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.rentals[rt.ID]
	if !ok || !cur.Open() {
		return apperr.Newf(apperr.ErrNoOpenRental, "rental %s", rt.ID)
	}
	at := *rt.ReturnedAt
	cur.ReturnedAt = &at
	cur.LateDays = rt.LateDays
	cur.Penalty = rt.Penalty
	m.rentals[rt.ID] = cur
	delete(m.open, cur.BookID)
	return nil
}

func (m *memory) ListReturnedByUser(_ context.Context, userID string) ([]model.Rental, error) {
	m.mu.RLock()
	var out []model.Rental
	for _, id := range m.order {
		if rt := m.rentals[id]; rt.UserID == userID && !rt.Open() {
			out = append(out, rt)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ReturnedAt.After(*out[j].ReturnedAt) })
	return out, nil
}

func (m *memory) ListOpen(_ context.Context) ([]model.Rental, error) {
	m.mu.RLock()
	out := make([]model.Rental, 0, len(m.open))
	for _, id := range m.open {
		out = append(out, m.rentals[id])
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
