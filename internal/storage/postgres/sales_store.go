package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// SalesStore implements storage.SalesStore using PostgreSQL.
type SalesStore struct {
	pool *Pool
}

// NewSalesStore creates a new SalesStore.
func NewSalesStore(pool *Pool) *SalesStore {
	return &SalesStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SalesStore = (*SalesStore)(nil)

// InsertBulk adds multiple records atomically via COPY. Fails entire batch on any duplicate.
func (s *SalesStore) InsertBulk(ctx context.Context, records []*domain.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r == nil || r.UnitID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"sales"},
		[]string{"unit_id", "sale_date", "quantity"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.UnitID, domain.Day(r.Date), r.Quantity}, nil
		}),
	)
	if err != nil {
		return wrapError(err, "copy sales")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all records, ordered by unit_id ASC, date ASC.
func (s *SalesStore) GetAll(ctx context.Context) ([]*domain.SalesRecord, error) {
	query := `
		SELECT id, unit_id, sale_date, quantity
		FROM sales
		ORDER BY unit_id ASC, sale_date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all sales: %w", err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// GetByUnit retrieves all records for a unit, ordered by date ASC.
func (s *SalesStore) GetByUnit(ctx context.Context, unitID string) ([]*domain.SalesRecord, error) {
	query := `
		SELECT id, unit_id, sale_date, quantity
		FROM sales
		WHERE unit_id = $1
		ORDER BY sale_date ASC
	`

	rows, err := s.pool.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("get sales by unit: %w", err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// GetByDateRange retrieves records within [start, end] (inclusive).
func (s *SalesStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.SalesRecord, error) {
	query := `
		SELECT id, unit_id, sale_date, quantity
		FROM sales
		WHERE sale_date >= $1 AND sale_date <= $2
		ORDER BY unit_id ASC, sale_date ASC
	`

	rows, err := s.pool.Query(ctx, query, domain.Day(start), domain.Day(end))
	if err != nil {
		return nil, fmt.Errorf("get sales by date range: %w", err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// scanSales scans multiple rows into a slice of SalesRecord.
func scanSales(rows pgx.Rows) ([]*domain.SalesRecord, error) {
	var records []*domain.SalesRecord

	for rows.Next() {
		var r domain.SalesRecord

		err := rows.Scan(
			&r.ID,
			&r.UnitID,
			&r.Date,
			&r.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}

		r.Date = domain.Day(r.Date)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales rows: %w", err)
	}

	return records, nil
}
