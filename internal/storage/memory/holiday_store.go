package memory

import (
	"context"
	"sort"
	"sync"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// HolidayStore is an in-memory implementation of storage.HolidayStore.
type HolidayStore struct {
	mu   sync.RWMutex
	data map[int64]domain.Holiday // keyed by day unix seconds
}

// NewHolidayStore creates a new in-memory holiday store.
func NewHolidayStore() *HolidayStore {
	return &HolidayStore{
		data: make(map[int64]domain.Holiday),
	}
}

// InsertBulk adds multiple holidays atomically. Fails entire batch on any duplicate date.
func (s *HolidayStore) InsertBulk(_ context.Context, holidays []domain.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(holidays))
	for _, h := range holidays {
		if h.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := domain.Day(h.Date).Unix()
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, h := range holidays {
		h.Date = domain.Day(h.Date)
		s.data[h.Date.Unix()] = h
	}

	return nil
}

// GetAll retrieves all holidays, ordered by date ASC.
func (s *HolidayStore) GetAll(_ context.Context) ([]domain.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Holiday, 0, len(s.data))
	for _, h := range s.data {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })

	return result, nil
}

var _ storage.HolidayStore = (*HolidayStore)(nil)
