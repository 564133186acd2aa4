package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-forecast-lab/internal/storage"
	"grocery-forecast-lab/internal/storage/migrations"
)

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil, "op"))
	assert.ErrorIs(t, wrapError(&pgconn.PgError{Code: "23505"}, "op"), storage.ErrDuplicateKey)
	assert.ErrorIs(t, wrapError(pgx.ErrNoRows, "op"), storage.ErrNotFound)

	base := errors.New("boom")
	err := wrapError(base, "insert sales")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "insert sales: boom", err.Error())
}

func TestMigrations_AreRecorded(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, applied, "second run must not reapply")

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 3, n)
}
