package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"grocery-forecast-lab/internal/config"
	"grocery-forecast-lab/internal/orchestrator"
	"grocery-forecast-lab/internal/pipeline"
	"grocery-forecast-lab/internal/storage"
	chstore "grocery-forecast-lab/internal/storage/clickhouse"
	"grocery-forecast-lab/internal/storage/memory"
	pgstore "grocery-forecast-lab/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	salesStore   storage.SalesStore
	holidayStore storage.HolidayStore
	featureStore storage.FeatureStore // nil when features are not persisted
	runStore     storage.RunStore
}

// createStores creates all required stores. In-memory stores are seeded with
// synthetic fixtures.
func createStores(ctx context.Context, c *config.Config) (*allStores, func(), error) {
	if c.UseMemory {
		stores := &allStores{
			salesStore:   memory.NewSalesStore(),
			holidayStore: memory.NewHolidayStore(),
			runStore:     memory.NewRunStore(),
		}
		if c.PersistFeatures {
			stores.featureStore = memory.NewFeatureStore()
		}

		opts := pipeline.FixtureOptions{Units: c.FixtureUnits, Days: c.FixtureDays}
		if err := pipeline.LoadFixtures(ctx, stores.salesStore, stores.holidayStore, opts); err != nil {
			return nil, nil, err
		}
		logger.Info("loaded synthetic fixtures", zap.Int("units", opts.Units), zap.Int("days", opts.Days))
		return stores, func() {}, nil
	}

	if err := c.RequireStores(); err != nil {
		return nil, nil, err
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, c.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	stores := &allStores{
		salesStore:   storage.NewInstrumentedSalesStore(pgstore.NewSalesStore(pool), "postgres"),
		holidayStore: storage.NewInstrumentedHolidayStore(pgstore.NewHolidayStore(pool), "postgres"),
		runStore:     storage.NewInstrumentedRunStore(pgstore.NewRunStore(pool), "postgres"),
	}

	if !c.PersistFeatures {
		return stores, pool.Close, nil
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, c.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	stores.featureStore = storage.NewInstrumentedFeatureStore(chstore.NewFeatureStore(chConn), "clickhouse")

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// newOrchestrator wires an orchestrator to stores with the loaded config.
func newOrchestrator(stores *allStores) *orchestrator.Orchestrator {
	// validated in setup
	from, to, _ := cfg.DateRange()

	return orchestrator.New(orchestrator.Options{
		SalesStore:   stores.salesStore,
		HolidayStore: stores.holidayStore,
		FeatureStore: stores.featureStore,
		RunStore:     stores.runStore,
		Features:     cfg.Features(),
		Horizon:      cfg.Horizon,
		Selection:    orchestrator.Selection{Units: cfg.Units, From: from, To: to},
		OutputDir:    cfg.OutputDir,
		Logger:       logger,
	})
}

// logResult prints the run summary.
func logResult(result *orchestrator.RunResult) {
	logger.Info("run finished",
		zap.String("run_id", result.RunID),
		zap.Int("units", result.Units),
		zap.Int("dates", result.Dates),
		zap.Int("rows", result.Rows),
		zap.Int("columns", result.Columns),
		zap.String("target", result.TargetColumn),
		zap.Int("train_rows", result.TrainRows),
		zap.Int("predict_rows", result.PredictRows),
		zap.Strings("files", result.Files),
		zap.Strings("warnings", result.Warnings))
}
