package clickhouse

import (
	"context"
	"fmt"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertTable stores every cell of table under runID in a single batch.
// Runs are immutable: a run_id that already has values is rejected.
func (s *FeatureStore) InsertTable(ctx context.Context, runID string, table *features.FeatureTable) error {
	if runID == "" || table == nil {
		return storage.ErrInvalidInput
	}
	if table.Len() == 0 {
		return nil
	}

	exists, err := s.runExists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_values (run_id, unit_id, date, feature, value)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, v := range storage.FeatureValues(runID, table) {
		// Pass nil values directly for Nullable columns
		if err := batch.Append(v.RunID, v.UnitID, v.Date, v.Feature, v.Value); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByUnit retrieves a unit's values for a run, ordered by date ASC, feature ASC.
func (s *FeatureStore) GetByUnit(ctx context.Context, runID, unitID string) ([]*domain.FeatureValue, error) {
	query := `
		SELECT run_id, unit_id, date, feature, value
		FROM feature_values
		WHERE run_id = ? AND unit_id = ?
		ORDER BY date ASC, feature ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, unitID)
	if err != nil {
		return nil, fmt.Errorf("query by unit: %w", err)
	}
	defer rows.Close()

	return scanFeatureValues(rows)
}

// GetColumn retrieves one feature for a run, ordered by unit_id ASC, date ASC.
func (s *FeatureStore) GetColumn(ctx context.Context, runID, feature string) ([]*domain.FeatureValue, error) {
	query := `
		SELECT run_id, unit_id, date, feature, value
		FROM feature_values
		WHERE run_id = ? AND feature = ?
		ORDER BY unit_id ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, feature)
	if err != nil {
		return nil, fmt.Errorf("query by feature: %w", err)
	}
	defer rows.Close()

	return scanFeatureValues(rows)
}

// runExists checks if any value was stored for runID.
func (s *FeatureStore) runExists(ctx context.Context, runID string) (bool, error) {
	query := `SELECT count(*) FROM feature_values WHERE run_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanFeatureValues scans multiple rows.
func scanFeatureValues(rows chRows) ([]*domain.FeatureValue, error) {
	var values []*domain.FeatureValue

	for rows.Next() {
		var v domain.FeatureValue
		if err := rows.Scan(&v.RunID, &v.UnitID, &v.Date, &v.Feature, &v.Value); err != nil {
			return nil, fmt.Errorf("scan feature value row: %w", err)
		}
		v.Date = domain.Day(v.Date)
		values = append(values, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature value rows: %w", err)
	}

	return values, nil
}
