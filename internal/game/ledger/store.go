package ledger

import (
	"context"
	"sync"
)

// ReportStore persists closed turn reports.
type ReportStore interface {
	Save(ctx context.Context, r Report) error
	// List returns up to limit reports, most recent turn first.
	List(ctx context.Context, limit int) ([]Report, error)
}

// MemoryStore is an in-process ReportStore.
type MemoryStore struct {
	mu      sync.Mutex
	reports []Report
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Save appends r.
func (s *MemoryStore) Save(_ context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

// List returns up to limit reports, newest first. A limit <= 0 returns all.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Report
	for i := len(s.reports) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.reports[i])
	}
	return out, nil
}
