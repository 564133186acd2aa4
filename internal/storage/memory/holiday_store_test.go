package memory

import (
	"context"
	"errors"
	"testing"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/storage"
)

func TestHolidayStore_InsertAndGetAll(t *testing.T) {
	store := NewHolidayStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []domain.Holiday{
		{Date: day(120), Name: "Labour Day"},
		{Date: day(0), Name: "New Year"},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 holidays, got %d", len(result))
	}
	if result[0].Name != "New Year" {
		t.Errorf("Expected holidays ordered by date, got %s first", result[0].Name)
	}
}

func TestHolidayStore_DuplicateDate(t *testing.T) {
	store := NewHolidayStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []domain.Holiday{{Date: day(0)}}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []domain.Holiday{{Date: day(5)}, {Date: day(0)}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	result, _ := store.GetAll(ctx)
	if len(result) != 1 {
		t.Errorf("Expected failed batch to leave 1 holiday, got %d", len(result))
	}
}
