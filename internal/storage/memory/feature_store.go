package memory

import (
	"context"
	"sort"
	"sync"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.FeatureValue // keyed by run_id
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[string][]*domain.FeatureValue),
	}
}

// InsertTable stores every cell of table under runID.
func (s *FeatureStore) InsertTable(_ context.Context, runID string, table *features.FeatureTable) error {
	if runID == "" || table == nil {
		return storage.ErrInvalidInput
	}

	values := storage.FeatureValues(runID, table)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[runID] = values
	return nil
}

// GetByUnit retrieves a unit's values for a run, ordered by date ASC, feature ASC.
func (s *FeatureStore) GetByUnit(_ context.Context, runID, unitID string) ([]*domain.FeatureValue, error) {
	result := s.filter(runID, func(v *domain.FeatureValue) bool { return v.UnitID == unitID })

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Feature < result[j].Feature
	})
	return result, nil
}

// GetColumn retrieves one feature for a run, ordered by unit_id ASC, date ASC.
func (s *FeatureStore) GetColumn(_ context.Context, runID, feature string) ([]*domain.FeatureValue, error) {
	result := s.filter(runID, func(v *domain.FeatureValue) bool { return v.Feature == feature })

	sort.Slice(result, func(i, j int) bool {
		if result[i].UnitID != result[j].UnitID {
			return result[i].UnitID < result[j].UnitID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (s *FeatureStore) filter(runID string, keep func(*domain.FeatureValue) bool) []*domain.FeatureValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureValue
	for _, v := range s.data[runID] {
		if keep(v) {
			copy := *v
			result = append(result, &copy)
		}
	}
	return result
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
