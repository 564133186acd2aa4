package memory

import (
	"context"
	"sync"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.FeatureRun
	order []string // insertion order
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.FeatureRun),
	}
}

// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, run *domain.FeatureRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *run
	copy.Windows = append([]int(nil), run.Windows...)
	s.data[run.RunID] = &copy
	s.order = append(s.order, run.RunID)
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.FeatureRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *run
	copy.Windows = append([]int(nil), run.Windows...)
	return &copy, nil
}

// GetLatest retrieves the most recently created run, ties broken by insertion order.
func (s *RunStore) GetLatest(_ context.Context) (*domain.FeatureRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.FeatureRun
	for _, id := range s.order {
		run := s.data[id]
		if latest == nil || !run.CreatedAt.Before(latest.CreatedAt) {
			latest = run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	copy := *latest
	copy.Windows = append([]int(nil), latest.Windows...)
	return &copy, nil
}

var _ storage.RunStore = (*RunStore)(nil)
