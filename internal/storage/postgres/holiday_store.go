package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// HolidayStore implements storage.HolidayStore using PostgreSQL.
type HolidayStore struct {
	pool *Pool
}

// NewHolidayStore creates a new HolidayStore.
func NewHolidayStore(pool *Pool) *HolidayStore {
	return &HolidayStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HolidayStore = (*HolidayStore)(nil)

// InsertBulk adds holidays in one transaction. Any duplicate date fails the whole batch.
func (s *HolidayStore) InsertBulk(ctx context.Context, holidays []domain.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, h := range holidays {
		if h.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		batch.Queue(`INSERT INTO holidays (holiday_date, name) VALUES ($1, $2)`, domain.Day(h.Date), h.Name)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return wrapError(err, "insert holidays")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all holidays, ordered by date ASC.
func (s *HolidayStore) GetAll(ctx context.Context) ([]domain.Holiday, error) {
	query := `
		SELECT holiday_date, name
		FROM holidays
		ORDER BY holiday_date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get holidays: %w", err)
	}
	defer rows.Close()

	var holidays []domain.Holiday
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, fmt.Errorf("scan holiday row: %w", err)
		}
		h.Date = domain.Day(h.Date)
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holiday rows: %w", err)
	}

	return holidays, nil
}
