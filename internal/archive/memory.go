package archive

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps records in process memory, for deployments without a
// database.
type Memory struct {
	mu   sync.Mutex
	recs map[string]Record
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]Record)}
}

func (m *Memory) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.GameID] = rec
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.Lock()
	out := make([]Record, 0, len(m.recs))
	for _, rec := range m.recs {
		out = append(out, rec)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
