package reservationrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"

	"github.com/google/uuid"
)

type memory struct {
	mu     sync.Mutex
	queues map[string][]model.Reservation // kept sorted
	seq    int64
}

func NewMemory() Repo {
	return &memory{queues: make(map[string][]model.Reservation)}
}

func (m *memory) Enqueue(_ context.Context, bookID, userID string, at time.Time) (model.Reservation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[bookID]
	for _, res := range q {
		if res.UserID == userID {
			return res, false, nil
		}
	}
	m.seq++
	res := model.Reservation{ID: uuid.NewString(), BookID: bookID, UserID: userID, QueuedAt: at.UTC(), Seq: m.seq}
	q = append(q, res)
	sort.SliceStable(q, func(i, j int) bool {
		if !q[i].QueuedAt.Equal(q[j].QueuedAt) {
			return q[i].QueuedAt.Before(q[j].QueuedAt)
		}
		return q[i].Seq < q[j].Seq
	})
	m.queues[bookID] = q
	return res, true, nil
}

func (m *memory) DequeueHead(_ context.Context, bookID string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[bookID]
	if len(q) == 0 {
		return nil, nil
	}
	head := q[0]
	m.set(bookID, q[1:])
	return &head, nil
}

func (m *memory) Peek(_ context.Context, bookID string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[bookID]
	if len(q) == 0 {
		return nil, nil
	}
	head := q[0]
	return &head, nil
}

func (m *memory) Remove(_ context.Context, bookID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[bookID]
	for i, res := range q {
		if res.UserID == userID {
			rest := append(append([]model.Reservation(nil), q[:i]...), q[i+1:]...)
			m.set(bookID, rest)
			return true, nil
		}
	}
	return false, nil
}

func (m *memory) List(_ context.Context, bookID string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Reservation(nil), m.queues[bookID]...), nil
}

func (m *memory) ListForUser(_ context.Context, userID string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Reservation
	for _, q := range m.queues {
		for _, res := range q {
			if res.UserID == userID {
				out = append(out, res)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].QueuedAt.Equal(out[j].QueuedAt) {
			return out[i].QueuedAt.Before(out[j].QueuedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (m *memory) set(bookID string, q []model.Reservation) {
	if len(q) == 0 {
		delete(m.queues, bookID)
		return
	}
	m.queues[bookID] = q
}
