package repository

import (
	"context"
	"sync"

	"github.com/okian/radial/pkg/metrics"
)

// MemoryStore is an in-memory Store that evicts the oldest run once full.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]Run
	order   []string // insertion order, oldest first
	maxRuns int
	metrics bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		runs:    make(map[string]Run),
		maxRuns: DefaultMaxRuns,
		metrics: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	if _, ok := s.runs[run.ID]; ok {
		s.removeLocked(run.ID)
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	for len(s.order) > s.maxRuns {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	n := len(s.order)
	s.mu.Unlock()

	if s.metrics {
		metrics.UpdateStoredRuns(n)
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(ctx context.Context, n int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]Run, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemoryStore) removeLocked(id string) {
	delete(s.runs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
