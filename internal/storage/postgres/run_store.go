package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, created_at, unit_count, date_count, row_count, column_count,
	windows, horizon, target_column, train_rows, predict_rows
`

// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.FeatureRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO feature_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	windows := make([]int32, len(run.Windows))
	for i, w := range run.Windows {
		windows[i] = int32(w)
	}

	_, err := s.pool.Exec(ctx, query,
		run.RunID,
		run.CreatedAt,
		run.Units,
		run.Dates,
		run.Rows,
		run.Columns,
		windows,
		run.Horizon,
		run.TargetColumn,
		run.TrainRows,
		run.PredictRows,
	)
	return wrapError(err, "insert feature run")
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.FeatureRun, error) {
	query := `SELECT ` + runColumns + ` FROM feature_runs WHERE run_id = $1`

	run, err := scanRun(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		return nil, wrapError(err, "get feature run")
	}
	return run, nil
}

// GetLatest retrieves the most recently created run. Returns ErrNotFound if none.
func (s *RunStore) GetLatest(ctx context.Context) (*domain.FeatureRun, error) {
	query := `SELECT ` + runColumns + ` FROM feature_runs ORDER BY created_at DESC, id DESC LIMIT 1`

	run, err := scanRun(s.pool.QueryRow(ctx, query))
	if err != nil {
		return nil, wrapError(err, "get latest feature run")
	}
	return run, nil
}

func scanRun(row pgx.Row) (*domain.FeatureRun, error) {
	var run domain.FeatureRun
	var windows []int32

	err := row.Scan(
		&run.RunID,
		&run.CreatedAt,
		&run.Units,
		&run.Dates,
		&run.Rows,
		&run.Columns,
		&windows,
		&run.Horizon,
		&run.TargetColumn,
		&run.TrainRows,
		&run.PredictRows,
	)
	if err != nil {
		return nil, err
	}

	run.Windows = make([]int, len(windows))
	for i, w := range windows {
		run.Windows[i] = int(w)
	}
	return &run, nil
}
