package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/pipeline"
	"grocery-forecast-lab/internal/reporting"
	"grocery-forecast-lab/internal/storage"
	"grocery-forecast-lab/internal/storage/memory"
	"grocery-forecast-lab/internal/target"
)

type testStores struct {
	sales    *memory.SalesStore
	holidays *memory.HolidayStore
	features *memory.FeatureStore
	runs     *memory.RunStore
}

func createTestStores() *testStores {
	return &testStores{
		sales:    memory.NewSalesStore(),
		holidays: memory.NewHolidayStore(),
		features: memory.NewFeatureStore(),
		runs:     memory.NewRunStore(),
	}
}

func testConfig() features.Config {
	return features.Config{
		Columns:        features.Columns{Unit: "store_item", Date: "date", Target: "sales"},
		RollingWindows: []int{7},
	}
}

func newTestOrchestrator(stores *testStores, outputDir string) *Orchestrator {
	return New(Options{
		SalesStore:   stores.sales,
		HolidayStore: stores.holidays,
		FeatureStore: stores.features,
		RunStore:     stores.runs,
		Features:     testConfig(),
		Horizon:      7,
		OutputDir:    outputDir,
		Clock:        func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func TestOrchestrator_Run_EmptySales(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	result, err := newTestOrchestrator(stores, "").Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.RunID != "" {
		t.Errorf("expected no run id, got %s", result.RunID)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
	if _, err := stores.runs.GetLatest(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no stored run, got %v", err)
	}
}

func TestOrchestrator_Run_WithFixtures(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	outputDir := t.TempDir()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 2, Days: 400}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	result, err := newTestOrchestrator(stores, outputDir).Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Units != 2 || result.Dates != 400 || result.Rows != 800 {
		t.Errorf("unexpected shape: units=%d dates=%d rows=%d", result.Units, result.Dates, result.Rows)
	}
	wantColumns := 1 + len(features.NewSchema("sales").Columns([]int{7})) + 1
	if result.Columns != wantColumns {
		t.Errorf("expected %d columns, got %d", wantColumns, result.Columns)
	}
	if result.TargetColumn != "target_07" {
		t.Errorf("expected target_07, got %s", result.TargetColumn)
	}
	if result.TrainRows != 2*(400-7) || result.PredictRows != 14 {
		t.Errorf("unexpected split: train=%d predict=%d", result.TrainRows, result.PredictRows)
	}
	if !result.Sufficiency.AllPass {
		t.Errorf("expected all sufficiency checks to pass: %+v", result.Sufficiency.Checks)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if result.Baseline == nil {
		t.Fatal("expected baseline report")
	}
	if result.Baseline.Predictor != "sales_lag0" || result.Baseline.Observations != result.TrainRows {
		t.Errorf("unexpected baseline: %+v", result.Baseline)
	}
	if result.Reused {
		t.Error("first run must not be reused")
	}
	if result.Holidays == nil || result.Holidays.Len() == 0 {
		t.Error("expected the fixture holiday calendar on the result")
	}

	report, err := os.ReadFile(filepath.Join(outputDir, reporting.ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), fmt.Sprintf("| Holidays | %d (", result.Holidays.Len())) {
		t.Error("expected the holiday count in the report")
	}

	run, err := stores.runs.GetByID(ctx, result.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Rows != 800 || run.Horizon != 7 || run.TargetColumn != "target_07" {
		t.Errorf("unexpected stored run: %+v", run)
	}
	if !run.CreatedAt.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected created_at %s", run.CreatedAt)
	}

	values, err := stores.features.GetColumn(ctx, result.RunID, "target_07")
	if err != nil {
		t.Fatalf("get column: %v", err)
	}
	if len(values) != 800 {
		t.Errorf("expected 800 target values, got %d", len(values))
	}

	if len(result.Files) != 3 {
		t.Errorf("expected 3 report files, got %v", result.Files)
	}
}

func TestOrchestrator_Run_SameInputReused(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 1, Days: 30}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	orch := newTestOrchestrator(stores, "")
	first, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.RunID != second.RunID {
		t.Errorf("expected identical run ids, got %s and %s", first.RunID, second.RunID)
	}
	if !second.Reused {
		t.Error("expected second run to be reused")
	}
}

func TestOrchestrator_Run_ShortHistoryWarns(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 2, Days: 30}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	result, err := newTestOrchestrator(stores, "").Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "year_ago_lags") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected year_ago_lags warning, got %v", result.Warnings)
	}
	if result.Rows != 60 {
		t.Errorf("expected 60 rows, got %d", result.Rows)
	}
}

func TestOrchestrator_Run_WithoutOptionalStores(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 1, Days: 20}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	orch := New(Options{
		SalesStore:   stores.sales,
		HolidayStore: stores.holidays,
		Features:     testConfig(),
		Horizon:      1,
	})
	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.TargetColumn != "target_01" {
		t.Errorf("expected target_01, got %s", result.TargetColumn)
	}
	if len(result.Files) != 0 {
		t.Errorf("expected no files, got %v", result.Files)
	}
}

func TestOrchestrator_Run_InvalidHorizon(t *testing.T) {
	stores := createTestStores()
	orch := New(Options{
		SalesStore:   stores.sales,
		HolidayStore: stores.holidays,
		Features:     testConfig(),
		Horizon:      0,
	})

	_, err := orch.Run(context.Background())
	if !errors.Is(err, target.ErrInvalidHorizon) {
		t.Errorf("expected ErrInvalidHorizon, got %v", err)
	}
}

type failingSalesStore struct {
	storage.SalesStore
}

func (failingSalesStore) GetAll(context.Context) ([]*domain.SalesRecord, error) {
	return nil, errors.New("connection refused")
}

func TestOrchestrator_Run_LoadError(t *testing.T) {
	stores := createTestStores()
	orch := New(Options{
		SalesStore:   failingSalesStore{},
		HolidayStore: stores.holidays,
		Features:     testConfig(),
		Horizon:      7,
	})

	_, err := orch.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "phase 1") {
		t.Errorf("expected phase 1 error, got %v", err)
	}
}

func TestOrchestrator_Run_EngineError(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 1, Days: 10}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	cfg := testConfig()
	cfg.RollingWindows = []int{0}
	orch := New(Options{
		SalesStore:   stores.sales,
		HolidayStore: stores.holidays,
		Features:     cfg,
		Horizon:      7,
	})

	_, err := orch.Run(ctx)
	if !errors.Is(err, features.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestOrchestrator_Run_DateSelection(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 2, Days: 60}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	orch := newTestOrchestrator(stores, "")
	orch.selection = Selection{
		From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Units != 2 || result.Dates != 31 || result.Rows != 62 {
		t.Errorf("unexpected shape: units=%d dates=%d rows=%d", result.Units, result.Dates, result.Rows)
	}
}

func TestOrchestrator_Run_UnitSelection(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 3, Days: 60}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	orch := newTestOrchestrator(stores, "")
	orch.selection = Selection{
		Units: []string{pipeline.FixtureUnitID(0), "unknown_unit"},
		From:  time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2023, 1, 19, 0, 0, 0, 0, time.UTC),
	}
	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Units != 1 || result.Dates != 10 || result.Rows != 10 {
		t.Errorf("unexpected shape: units=%d dates=%d rows=%d", result.Units, result.Dates, result.Rows)
	}
	if got := result.Table.Units[0]; got != pipeline.FixtureUnitID(0) {
		t.Errorf("expected unit %s, got %s", pipeline.FixtureUnitID(0), got)
	}
	if !result.Table.Dates[0].Equal(time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected first date %s", result.Table.Dates[0])
	}
}

func TestOrchestrator_Run_SelectionWithoutSales(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()

	if err := pipeline.LoadFixtures(ctx, stores.sales, stores.holidays, pipeline.FixtureOptions{Units: 1, Days: 20}); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	orch := newTestOrchestrator(stores, "")
	orch.selection = Selection{From: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.RunID != "" || len(result.Warnings) != 1 {
		t.Errorf("expected an empty run with one warning, got id=%q warnings=%v", result.RunID, result.Warnings)
	}
}
