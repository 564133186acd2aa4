package storage

import (
	"context"
	"errors"
	"time"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/observability"
)

// observe records the duration and outcome of one store call.
func observe(database, operation string, start time.Time, err error) {
	observability.RecordDBQuery(database, operation, time.Since(start).Seconds(), err)
}

// InstrumentedSalesStore records query metrics around a SalesStore.
type InstrumentedSalesStore struct {
	next     SalesStore
	database string
}

// NewInstrumentedSalesStore wraps next; database labels the metrics.
func NewInstrumentedSalesStore(next SalesStore, database string) *InstrumentedSalesStore {
	return &InstrumentedSalesStore{next: next, database: database}
}

// InsertBulk implements SalesStore.
func (s *InstrumentedSalesStore) InsertBulk(ctx context.Context, records []*domain.SalesRecord) (err error) {
	defer func(start time.Time) { observe(s.database, "sales_insert_bulk", start, err) }(time.Now())
	return s.next.InsertBulk(ctx, records)
}

// GetAll implements SalesStore.
func (s *InstrumentedSalesStore) GetAll(ctx context.Context) (_ []*domain.SalesRecord, err error) {
	defer func(start time.Time) { observe(s.database, "sales_get_all", start, err) }(time.Now())
	return s.next.GetAll(ctx)
}

// GetByUnit implements SalesStore.
func (s *InstrumentedSalesStore) GetByUnit(ctx context.Context, unitID string) (_ []*domain.SalesRecord, err error) {
	defer func(start time.Time) { observe(s.database, "sales_get_by_unit", start, err) }(time.Now())
	return s.next.GetByUnit(ctx, unitID)
}

// GetByDateRange implements SalesStore.
func (s *InstrumentedSalesStore) GetByDateRange(ctx context.Context, start, end time.Time) (_ []*domain.SalesRecord, err error) {
	defer func(begin time.Time) { observe(s.database, "sales_get_by_date_range", begin, err) }(time.Now())
	return s.next.GetByDateRange(ctx, start, end)
}

// InstrumentedHolidayStore records query metrics around a HolidayStore.
type InstrumentedHolidayStore struct {
	next     HolidayStore
	database string
}

// NewInstrumentedHolidayStore wraps next; database labels the metrics.
func NewInstrumentedHolidayStore(next HolidayStore, database string) *InstrumentedHolidayStore {
	return &InstrumentedHolidayStore{next: next, database: database}
}

// InsertBulk implements HolidayStore.
func (s *InstrumentedHolidayStore) InsertBulk(ctx context.Context, holidays []domain.Holiday) (err error) {
	defer func(start time.Time) { observe(s.database, "holidays_insert_bulk", start, err) }(time.Now())
	return s.next.InsertBulk(ctx, holidays)
}

// GetAll implements HolidayStore.
func (s *InstrumentedHolidayStore) GetAll(ctx context.Context) (_ []domain.Holiday, err error) {
	defer func(start time.Time) { observe(s.database, "holidays_get_all", start, err) }(time.Now())
	return s.next.GetAll(ctx)
}

// InstrumentedFeatureStore records query metrics around a FeatureStore.
type InstrumentedFeatureStore struct {
	next     FeatureStore
	database string
}

// NewInstrumentedFeatureStore wraps next; database labels the metrics.
func NewInstrumentedFeatureStore(next FeatureStore, database string) *InstrumentedFeatureStore {
	return &InstrumentedFeatureStore{next: next, database: database}
}

// InsertTable implements FeatureStore.
func (s *InstrumentedFeatureStore) InsertTable(ctx context.Context, runID string, table *features.FeatureTable) (err error) {
	defer func(start time.Time) { observe(s.database, "features_insert_table", start, err) }(time.Now())
	return s.next.InsertTable(ctx, runID, table)
}

// GetByUnit implements FeatureStore.
func (s *InstrumentedFeatureStore) GetByUnit(ctx context.Context, runID, unitID string) (_ []*domain.FeatureValue, err error) {
	defer func(start time.Time) { observe(s.database, "features_get_by_unit", start, err) }(time.Now())
	return s.next.GetByUnit(ctx, runID, unitID)
}

// GetColumn implements FeatureStore.
func (s *InstrumentedFeatureStore) GetColumn(ctx context.Context, runID, feature string) (_ []*domain.FeatureValue, err error) {
	defer func(start time.Time) { observe(s.database, "features_get_column", start, err) }(time.Now())
	return s.next.GetColumn(ctx, runID, feature)
}

// InstrumentedRunStore records query metrics around a RunStore.
type InstrumentedRunStore struct {
	next     RunStore
	database string
}

// NewInstrumentedRunStore wraps next; database labels the metrics.
func NewInstrumentedRunStore(next RunStore, database string) *InstrumentedRunStore {
	return &InstrumentedRunStore{next: next, database: database}
}

// Insert implements RunStore.
func (s *InstrumentedRunStore) Insert(ctx context.Context, run *domain.FeatureRun) (err error) {
	defer func(start time.Time) { observe(s.database, "runs_insert", start, err) }(time.Now())
	return s.next.Insert(ctx, run)
}

// GetByID implements RunStore. ErrNotFound is an expected outcome and is
// not counted as an error.
func (s *InstrumentedRunStore) GetByID(ctx context.Context, runID string) (_ *domain.FeatureRun, err error) {
	defer func(start time.Time) { observe(s.database, "runs_get_by_id", start, ignoreNotFound(err)) }(time.Now())
	return s.next.GetByID(ctx, runID)
}

// GetLatest implements RunStore.
func (s *InstrumentedRunStore) GetLatest(ctx context.Context) (_ *domain.FeatureRun, err error) {
	defer func(start time.Time) { observe(s.database, "runs_get_latest", start, ignoreNotFound(err)) }(time.Now())
	return s.next.GetLatest(ctx)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
