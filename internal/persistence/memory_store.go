package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/petrijr/botflow/pkg/api"
)

// InMemoryRunStore is a goroutine-safe RunStore backed by a map.
// Records do not survive the process; useful for tests and development.
type InMemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

var _ RunStore = (*InMemoryRunStore)(nil)

// NewInMemoryRunStore creates an empty InMemoryRunStore.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{runs: make(map[string]*RunRecord)}
}

func (s *InMemoryRunStore) SaveRun(_ context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.Results = append([]api.StepResult(nil), rec.Results...)
	s.runs[rec.ID] = &cp
	return nil
}

func (s *InMemoryRunStore) GetRun(_ context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemoryRunStore) ListRuns(_ context.Context, filter RunFilter) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*RunRecord
	for _, rec := range s.runs {
		if filter.matches(rec) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	// Map iteration order is random; oldest first is the useful order.
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
