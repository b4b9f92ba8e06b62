package historyrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/felipe-nonato/Saber-IFPB/model"
)

type memory struct {
	mu      sync.RWMutex
	records []model.ReadingRecord
}

func NewMemory() Repo { return &memory{} }

func (m *memory) Append(_ context.Context, rec model.ReadingRecord) error {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

func (m *memory) ListForUser(_ context.Context, userID string) ([]model.ReadingRecord, error) {
	m.mu.RLock()
	var out []model.ReadingRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	// newest first; among equal timestamps the later append wins
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (m *memory) ListAll(_ context.Context) ([]model.ReadingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ReadingRecord(nil), m.records...), nil
}
