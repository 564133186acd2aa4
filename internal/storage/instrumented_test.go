package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/observability"
	"grocery-forecast-lab/internal/storage"
	"grocery-forecast-lab/internal/storage/memory"
)

func errorCount(database, operation string) float64 {
	return testutil.ToFloat64(observability.DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation))
}

func TestInstrumentedSalesStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInstrumentedSalesStore(memory.NewSalesStore(), "test")
	records := []*domain.SalesRecord{
		{UnitID: "a", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Quantity: 2},
	}

	require.NoError(t, store.InsertBulk(ctx, records))
	before := errorCount("test", "sales_insert_bulk")

	err := store.InsertBulk(ctx, records)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))
	assert.Equal(t, before+1, errorCount("test", "sales_insert_bulk"))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInstrumentedRunStore_NotFoundIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInstrumentedRunStore(memory.NewRunStore(), "test")
	before := errorCount("test", "runs_get_by_id")

	_, err := store.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, before, errorCount("test", "runs_get_by_id"))

	require.NoError(t, store.Insert(ctx, &domain.FeatureRun{RunID: "r1", CreatedAt: time.Now()}))
	run, err := store.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", run.RunID)
}
