package storage

import (
	"context"
	"time"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
)

// SalesStore provides access to sales storage.
type SalesStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on any
	// duplicate (unit_id, date).
	InsertBulk(ctx context.Context, records []*domain.SalesRecord) error

	// GetAll retrieves all records, ordered by unit_id ASC, date ASC.
	GetAll(ctx context.Context) ([]*domain.SalesRecord, error)

	// GetByUnit retrieves all records for a unit, ordered by date ASC.
	GetByUnit(ctx context.Context, unitID string) ([]*domain.SalesRecord, error)

	// GetByDateRange retrieves records within [start, end] (inclusive),
	// ordered by unit_id ASC, date ASC.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.SalesRecord, error)
}

// HolidayStore provides access to holidays storage.
type HolidayStore interface {
	// InsertBulk adds multiple holidays atomically. Fails entire batch on any duplicate date.
	InsertBulk(ctx context.Context, holidays []domain.Holiday) error

	// GetAll retrieves all holidays, ordered by date ASC.
	GetAll(ctx context.Context) ([]domain.Holiday, error)
}

// FeatureStore provides access to feature_values storage (long form).
type FeatureStore interface {
	// InsertTable stores every cell of table under runID.
	// Returns ErrDuplicateKey if values for runID already exist.
	InsertTable(ctx context.Context, runID string, table *features.FeatureTable) error

	// GetByUnit retrieves a unit's values for a run, ordered by date ASC, feature ASC.
	GetByUnit(ctx context.Context, runID, unitID string) ([]*domain.FeatureValue, error)

	// GetColumn retrieves one feature for a run, ordered by unit_id ASC, date ASC.
	GetColumn(ctx context.Context, runID, feature string) ([]*domain.FeatureValue, error)
}

// RunStore provides access to feature_runs storage.
type RunStore interface {
	// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.FeatureRun) error

	// GetByID retrieves a run. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.FeatureRun, error)

	// GetLatest retrieves the most recently created run. Returns ErrNotFound if none.
	GetLatest(ctx context.Context) (*domain.FeatureRun, error)
}
