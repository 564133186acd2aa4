package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// SalesStore is an in-memory implementation of storage.SalesStore.
type SalesStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[salesKey]*domain.SalesRecord
}

type salesKey struct {
	unitID string
	day    int64
}

// NewSalesStore creates a new in-memory sales store.
func NewSalesStore() *SalesStore {
	return &SalesStore{
		data: make(map[salesKey]*domain.SalesRecord),
	}
}

func keyOf(r *domain.SalesRecord) salesKey {
	return salesKey{unitID: r.UnitID, day: domain.Day(r.Date).Unix()}
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SalesStore) InsertBulk(_ context.Context, records []*domain.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[salesKey]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.UnitID == "" {
			return storage.ErrInvalidInput
		}
		key := keyOf(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		s.nextID++
		copy := *r
		copy.ID = s.nextID
		copy.Date = domain.Day(r.Date)
		s.data[keyOf(r)] = &copy
	}

	return nil
}

// GetAll retrieves all records, ordered by unit_id ASC, date ASC.
func (s *SalesStore) GetAll(_ context.Context) ([]*domain.SalesRecord, error) {
	return s.filter(func(*domain.SalesRecord) bool { return true }), nil
}

// GetByUnit retrieves all records for a unit, ordered by date ASC.
func (s *SalesStore) GetByUnit(_ context.Context, unitID string) ([]*domain.SalesRecord, error) {
	return s.filter(func(r *domain.SalesRecord) bool { return r.UnitID == unitID }), nil
}

// GetByDateRange retrieves records within [start, end] (inclusive).
func (s *SalesStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.SalesRecord, error) {
	from, to := domain.Day(start), domain.Day(end)
	return s.filter(func(r *domain.SalesRecord) bool {
		return !r.Date.Before(from) && !r.Date.After(to)
	}), nil
}

func (s *SalesStore) filter(keep func(*domain.SalesRecord) bool) []*domain.SalesRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SalesRecord
	for _, r := range s.data {
		if keep(r) {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UnitID != result[j].UnitID {
			return result[i].UnitID < result[j].UnitID
		}
		return result[i].Date.Before(result[j].Date)
	})

	return result
}

var _ storage.SalesStore = (*SalesStore)(nil)
