package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

func TestHolidayStore_InsertBulkAndGetAll(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewHolidayStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []domain.Holiday{
		{Date: day(121), Name: "Labour Day"},
		{Date: day(0), Name: "New Year"},
	}))

	holidays, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "New Year", holidays[0].Name)
	assert.True(t, holidays[1].Date.Equal(day(121)))

	err = store.InsertBulk(ctx, []domain.Holiday{{Date: day(0)}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
