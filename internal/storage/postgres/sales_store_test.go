package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

func TestSalesStore_InsertBulkAndGetAll(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewSalesStore(pool)

	records := []*domain.SalesRecord{
		{UnitID: "store1_item2", Date: day(1), Quantity: 2.5},
		{UnitID: "store1_item1", Date: day(0).Add(10 * time.Hour), Quantity: 3},
		{UnitID: "store1_item1", Date: day(1), Quantity: 0},
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "store1_item1", all[0].UnitID)
	assert.True(t, all[0].Date.Equal(day(0)))
	assert.InDelta(t, 3.0, all[0].Quantity, 0.0001)
	assert.NotZero(t, all[0].ID)
	assert.Equal(t, "store1_item2", all[2].UnitID)
	assert.InDelta(t, 2.5, all[2].Quantity, 0.0001)
}

func TestSalesStore_InsertBulkDuplicateRollsBack(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewSalesStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.SalesRecord{
		{UnitID: "u1", Date: day(0), Quantity: 1},
	}))

	err := store.InsertBulk(ctx, []*domain.SalesRecord{
		{UnitID: "u1", Date: day(1), Quantity: 1},
		{UnitID: "u1", Date: day(0), Quantity: 2},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSalesStore_Filters(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewSalesStore(pool)

	var records []*domain.SalesRecord
	for i := 0; i < 5; i++ {
		records = append(records,
			&domain.SalesRecord{UnitID: "a", Date: day(i), Quantity: float64(i)},
			&domain.SalesRecord{UnitID: "b", Date: day(i), Quantity: float64(i * 2)},
		)
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	byUnit, err := store.GetByUnit(ctx, "b")
	require.NoError(t, err)
	require.Len(t, byUnit, 5)
	assert.True(t, byUnit[0].Date.Before(byUnit[4].Date))

	byRange, err := store.GetByDateRange(ctx, day(3), day(10))
	require.NoError(t, err)
	assert.Len(t, byRange, 4)
	assert.Equal(t, "a", byRange[0].UnitID)
}
