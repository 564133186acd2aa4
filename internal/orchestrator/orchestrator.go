// Package orchestrator provides E2E feature pipeline orchestration.
// It coordinates: load → fingerprint → features → target → persist → reporting
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/features"
	"grocery-forecast-lab/internal/idhash"
	"grocery-forecast-lab/internal/metrics"
	"grocery-forecast-lab/internal/observability"
	"grocery-forecast-lab/internal/pipeline"
	"grocery-forecast-lab/internal/reporting"
	"grocery-forecast-lab/internal/storage"
	"grocery-forecast-lab/internal/target"
)

// Orchestrator coordinates the E2E pipeline execution.
type Orchestrator struct {
	// Stores
	salesStore   storage.SalesStore
	holidayStore storage.HolidayStore
	featureStore storage.FeatureStore
	runStore     storage.RunStore

	// Configs
	features  features.Config
	horizon   int
	selection Selection

	// Options
	outputDir string
	logger    *zap.Logger
	clock     func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	SalesStore   storage.SalesStore
	HolidayStore storage.HolidayStore

	// Optional stores, nothing is persisted when nil
	FeatureStore storage.FeatureStore
	RunStore     storage.RunStore

	// Feature generation and target horizon
	Features features.Config
	Horizon  int

	// Selection restricts the loaded sales; the zero value loads everything
	Selection Selection

	// Options
	OutputDir string // reports are written here when set
	Logger    *zap.Logger
	Clock     func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Orchestrator{
		salesStore:   opts.SalesStore,
		holidayStore: opts.HolidayStore,
		featureStore: opts.FeatureStore,
		runStore:     opts.RunStore,
		features:     opts.Features,
		horizon:      opts.Horizon,
		selection:    opts.Selection,
		outputDir:    opts.OutputDir,
		logger:       logger.Named("orchestrator"),
		clock:        clock,
	}
}

// Selection restricts the sales a run loads. Units are read one by one;
// From and To bound the dates inclusively, a zero bound is open.
type Selection struct {
	Units []string
	From  time.Time
	To    time.Time
}

// IsZero reports whether the selection loads the whole sales log.
func (s Selection) IsZero() bool {
	return len(s.Units) == 0 && s.From.IsZero() && s.To.IsZero()
}

func (s Selection) contains(d time.Time) bool {
	if !s.From.IsZero() && d.Before(domain.Day(s.From)) {
		return false
	}
	return s.To.IsZero() || !d.After(domain.Day(s.To))
}

// dateBounds fills open bounds with dates outside any sales log.
func (s Selection) dateBounds() (time.Time, time.Time) {
	from, to := s.From, s.To
	if from.IsZero() {
		from = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return from, to
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RunID        string
	Units        int
	Dates        int
	Rows         int
	Columns      int
	TargetColumn string
	TrainRows    int
	PredictRows  int
	Reused       bool // a run with the same fingerprint was already stored

	Table       *features.FeatureTable
	Holidays    *features.HolidayCalendar
	Sufficiency *pipeline.SufficiencyResult
	Baseline    *metrics.Report // nil if the baseline could not be scored
	Files       []string        // report files written
	Warnings    []string
}

// Run executes the full E2E pipeline.
// Phases:
//  1. Load sales and holidays
//  2. Fingerprint the run
//  3. Check history sufficiency
//  4. Generate features
//  5. Create the target and split rows
//  6. Score the naive baseline
//  7. Persist features and the run record
//  8. Write reports
func (o *Orchestrator) Run(ctx context.Context) (result *RunResult, err error) {
	started := o.clock()
	defer func() {
		status := observability.StatusSuccess
		if err != nil {
			status = observability.StatusFailure
		}
		observability.RecordPipelineRun(status, o.clock().Unix())
	}()

	if o.horizon < 1 {
		return nil, fmt.Errorf("%w: got %d", target.ErrInvalidHorizon, o.horizon)
	}
	result = &RunResult{}

	// Phase 1: Load input
	o.logger.Info("phase 1: loading input")
	stageStart := time.Now()
	records, holidays, err := o.loadInput(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load input) failed: %w", err)
	}
	o.stageDone("load", stageStart)
	observability.RecordInputLoaded(len(records), len(holidays))
	o.logger.Info("input loaded", zap.Int("sales_records", len(records)), zap.Int("holidays", len(holidays)))

	if len(records) == 0 {
		o.logger.Warn("no sales records, nothing to do")
		result.Warnings = append(result.Warnings, "no sales records")
		return result, nil
	}

	// Phase 2: Fingerprint
	cols := o.features.Columns
	result.RunID = idhash.ComputeRunID(
		cols.Unit, cols.Date, cols.Target,
		o.features.RollingWindows, o.horizon,
		idhash.ComputeInputDigest(records, holidays),
	)
	o.logger.Info("phase 2: run fingerprint", zap.String("run_id", result.RunID))

	// Phase 3: Sufficiency
	result.Sufficiency = pipeline.CheckSufficiency(records, holidays, o.features.RollingWindows, o.horizon)
	for _, name := range result.Sufficiency.Warnings() {
		o.logger.Warn("insufficient history, feature family undefined on every row", zap.String("check", name))
		result.Warnings = append(result.Warnings, "insufficient history: "+name)
	}
	for _, msg := range result.Sufficiency.Errors {
		o.logger.Warn("data integrity", zap.String("finding", msg))
	}
	observability.RecordSufficiencyWarnings(len(result.Sufficiency.Warnings()))

	// Phase 4: Features
	o.logger.Info("phase 4: generating features", zap.Ints("windows", o.features.RollingWindows))
	stageStart = time.Now()
	calendar := holidayCalendar(holidays)
	result.Holidays = calendar
	table, err := o.generate(ctx, records, calendar)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (features) failed: %w", err)
	}
	o.stageDone("features", stageStart)
	result.Table = table

	// Phase 5: Target
	targetCol, err := target.Create(table, o.horizon)
	if err != nil {
		return nil, fmt.Errorf("phase 5 (target) failed: %w", err)
	}
	split, err := target.SplitRows(table, targetCol)
	if err != nil {
		return nil, fmt.Errorf("phase 5 (split) failed: %w", err)
	}
	result.TargetColumn = targetCol
	result.TrainRows = len(split.Train)
	result.PredictRows = len(split.Predict)
	result.Units = len(table.UnitRanges())
	result.Rows = table.Len()
	result.Columns = len(table.ColumnNames())
	if result.Units > 0 {
		result.Dates = result.Rows / result.Units
	}
	observability.RecordFeatureTable(result.Rows, result.Columns)
	o.recordUndefined(table)
	o.logger.Info("features generated",
		zap.Int("rows", result.Rows),
		zap.Int("columns", result.Columns),
		zap.String("target", targetCol),
		zap.Int("train_rows", result.TrainRows),
		zap.Int("predict_rows", result.PredictRows))

	// Phase 6: Baseline
	o.evaluateBaseline(table, targetCol, split, result)

	// Phase 7: Persist
	stageStart = time.Now()
	if err := o.persist(ctx, started, result); err != nil {
		return nil, fmt.Errorf("phase 7 (persist) failed: %w", err)
	}
	o.stageDone("persist", stageStart)

	// Phase 8: Reports
	if o.outputDir != "" {
		stageStart = time.Now()
		files, err := o.writeReports(result)
		if err != nil {
			return nil, fmt.Errorf("phase 8 (reports) failed: %w", err)
		}
		o.stageDone("reports", stageStart)
		result.Files = files
		observability.RecordReportGenerated()
		o.logger.Info("reports written", zap.String("dir", o.outputDir), zap.Strings("files", files))
	}

	o.logger.Info("pipeline completed",
		zap.String("run_id", result.RunID),
		zap.Bool("reused", result.Reused),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// loadInput loads the selected sales and the holiday calendar.
func (o *Orchestrator) loadInput(ctx context.Context) ([]*domain.SalesRecord, []domain.Holiday, error) {
	records, err := o.loadSales(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load sales: %w", err)
	}

	holidays, err := o.holidayStore.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load holidays: %w", err)
	}

	return records, holidays, nil
}

func (o *Orchestrator) loadSales(ctx context.Context) ([]*domain.SalesRecord, error) {
	sel := o.selection
	switch {
	case sel.IsZero():
		return o.salesStore.GetAll(ctx)
	case len(sel.Units) == 0:
		from, to := sel.dateBounds()
		return o.salesStore.GetByDateRange(ctx, from, to)
	}

	var records []*domain.SalesRecord
	for _, unit := range sel.Units {
		unitRecords, err := o.salesStore.GetByUnit(ctx, unit)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", unit, err)
		}
		if len(unitRecords) == 0 {
			o.logger.Warn("selected unit has no sales", zap.String("unit", unit))
		}
		for _, r := range unitRecords {
			if sel.contains(r.Date) {
				records = append(records, r)
			}
		}
	}
	return records, nil
}

// generate runs the feature engine over the loaded records.
func (o *Orchestrator) generate(
	ctx context.Context,
	records []*domain.SalesRecord,
	calendar *features.HolidayCalendar,
) (*features.FeatureTable, error) {
	cols := o.features.Columns
	raw := features.RecordsTable(records, cols.Unit, cols.Date, cols.Target)
	return features.Generate(ctx, raw, calendar, o.features)
}

func holidayCalendar(holidays []domain.Holiday) *features.HolidayCalendar {
	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return features.NewHolidayCalendar(dates)
}

// evaluateBaseline scores the last observed value as a forecast of the target
// on training rows. Failure is a warning, not an error.
func (o *Orchestrator) evaluateBaseline(table *features.FeatureTable, targetCol string, split *target.Split, result *RunResult) {
	predictor := features.NewSchema(table.Target).Name(features.ColumnSpec{Family: features.FamilyLag, Lag: 0})

	report, err := metrics.Evaluate(table, targetCol, predictor, split.Train)
	if err != nil {
		o.logger.Warn("baseline not evaluated", zap.Error(err))
		result.Warnings = append(result.Warnings, "baseline not evaluated: "+err.Error())
		return
	}

	result.Baseline = report
	observability.RecordBaseline(report.WAPE, report.MedianAPE)
	o.logger.Info("baseline scored",
		zap.String("predictor", predictor),
		zap.Float64("wape", report.WAPE),
		zap.Float64("median_ape", report.MedianAPE),
		zap.Int("zero_actuals", report.ZeroActuals))
}

// persist stores the feature values and the run record. A run whose
// fingerprint is already stored is not written again.
func (o *Orchestrator) persist(ctx context.Context, started time.Time, result *RunResult) error {
	if o.runStore != nil {
		_, err := o.runStore.GetByID(ctx, result.RunID)
		switch {
		case err == nil:
			result.Reused = true
			o.logger.Info("run already stored, skipping persistence", zap.String("run_id", result.RunID))
			return nil
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("lookup run: %w", err)
		}
	}

	if o.featureStore != nil {
		err := o.featureStore.InsertTable(ctx, result.RunID, result.Table)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			// Features written by an earlier attempt that failed before the run record.
			o.logger.Info("features already stored", zap.String("run_id", result.RunID))
		case err != nil:
			return fmt.Errorf("store features: %w", err)
		default:
			observability.RecordCellsStored(result.Rows * result.Columns)
		}
	}

	if o.runStore != nil {
		run := &domain.FeatureRun{
			RunID:        result.RunID,
			CreatedAt:    started,
			Units:        result.Units,
			Dates:        result.Dates,
			Rows:         result.Rows,
			Columns:      result.Columns,
			Windows:      o.features.RollingWindows,
			Horizon:      o.horizon,
			TargetColumn: result.TargetColumn,
			TrainRows:    result.TrainRows,
			PredictRows:  result.PredictRows,
		}
		if err := o.runStore.Insert(ctx, run); err != nil {
			return fmt.Errorf("store run: %w", err)
		}
	}

	return nil
}

// writeReports renders the run report and feature CSV into the output dir.
func (o *Orchestrator) writeReports(result *RunResult) ([]string, error) {
	gen := reporting.NewGenerator().WithClock(o.clock)
	report := gen.Generate(reporting.Input{
		RunID:       result.RunID,
		Table:       result.Table,
		Holidays:    result.Holidays,
		Target:      result.TargetColumn,
		Windows:     o.features.RollingWindows,
		TrainRows:   result.TrainRows,
		PredictRows: result.PredictRows,
		DataQuality: pipeline.ToDataQuality(result.Sufficiency),
		Baseline:    result.Baseline,
		Warnings:    result.Warnings,
	})
	return gen.Write(o.outputDir, report, result.Table)
}

// recordUndefined publishes undefined cell counts per feature family.
func (o *Orchestrator) recordUndefined(table *features.FeatureTable) {
	schema := features.NewSchema(table.Target)
	families := map[string][]features.ColumnSpec{
		"lag":      schema.Lags(),
		"year_ago": schema.YearAgo(),
		"holiday":  schema.Holidays(),
	}
	for _, w := range o.features.RollingWindows {
		families["rolling"] = append(families["rolling"], schema.Rolling(w)...)
	}

	for family, specs := range families {
		undefined := 0
		seen := make(map[string]struct{})
		for _, name := range schema.Names(specs) {
			c, ok := table.Column(name)
			if _, dup := seen[name]; dup || !ok {
				continue
			}
			seen[name] = struct{}{}
			for _, v := range c.Values {
				if features.IsUndefined(v) {
					undefined++
				}
			}
		}
		observability.RecordUndefinedCells(family, undefined)
	}
}

func (o *Orchestrator) stageDone(stage string, start time.Time) {
	took := time.Since(start)
	observability.RecordStage(stage, took.Seconds())
	o.logger.Debug("stage finished", zap.String("stage", stage), zap.Duration("took", took))
}
