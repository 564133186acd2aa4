// Package features turns a raw sales log into a dense per-(unit, date)
// feature matrix: panel construction, rolling statistics, lag and lag-ratio
// features, prior-year locality lags, cyclical calendar encodings and holiday
// distances, merged into one table.
//
// The package is a pure transformation. It keeps no state between calls,
// performs no I/O and does not log; every error is returned to the caller.
package features

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Columns names the input columns. The target name also prefixes the
// generated feature columns.
type Columns struct {
	Unit   string `validate:"required"`
	Date   string `validate:"required,nefield=Unit"`
	Target string `validate:"required,nefield=Unit,nefield=Date"`
}

// Config is the fixed configuration of one feature generation call.
type Config struct {
	Columns        Columns
	RollingWindows []int `validate:"unique,dive,gt=0"`
	Workers        int   `validate:"gte=0"` // concurrent rolling tasks, 0 = one per window
}

var validate = validator.New()

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

type rollingFunc func(
	ctx context.Context,
	schema *Schema,
	units []string,
	dates []time.Time,
	series []UnitSeries,
	window int,
) (*Block, error)

// Generator runs the feature pipeline for a fixed configuration.
type Generator struct {
	cfg     Config
	schema  *Schema
	rolling rollingFunc
}

// NewGenerator validates cfg and creates a Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:     cfg,
		schema:  NewSchema(cfg.Columns.Target),
		rolling: ComputeRolling,
	}, nil
}

// Schema returns the column schema shared by all stages.
func (g *Generator) Schema() *Schema {
	return g.schema
}

// Generate converts the raw sales log into a FeatureTable.
// Steps:
//  1. Build the dense panel (empty input returns an empty table)
//  2. Rolling blocks, one concurrent task per window (fork-join, fail-fast)
//  3. Lag and prior-year blocks over the same panel
//  4. Cyclical and holiday blocks over the unique date axis
//  5. Merge everything onto the panel
func (g *Generator) Generate(ctx context.Context, table *RawTable, holidays *HolidayCalendar) (*FeatureTable, error) {
	// 1. Panel
	panel, err := BuildPanel(table, g.cfg.Columns)
	if err != nil {
		return nil, err
	}
	if panel.Empty() {
		return g.emptyTable(), nil
	}

	units := panel.RowUnits()
	dates := panel.RowDates()

	// 2. Rolling
	rolling, err := g.runRolling(ctx, panel, units, dates)
	if err != nil {
		return nil, err
	}

	// 3. Lags
	series := panel.Series()
	lags := ComputeLags(g.schema, units, dates, series)
	yearAgo := ComputeYearAgo(g.schema, units, dates, series)

	// 4. Calendar
	cyclical := EncodeCyclical(g.schema, panel.DateAxis)
	holidayBlock := ComputeHolidayDistances(g.schema, holidays, panel.DateAxis)

	// 5. Merge
	blocks := make([]*Block, 0, len(rolling)+4)
	blocks = append(blocks, lags, yearAgo)
	blocks = append(blocks, rolling...)
	blocks = append(blocks, cyclical, holidayBlock)

	return Merge(panel, g.cfg.Columns, blocks...)
}

// runRolling dispatches one task per window. Each task owns a private copy of
// the per-unit sequences. The first failure cancels the others and no partial
// result is returned.
func (g *Generator) runRolling(ctx context.Context, panel *Panel, units []string, dates []time.Time) ([]*Block, error) {
	windows := g.cfg.RollingWindows
	results := make([]*Block, len(windows))

	workers := g.cfg.Workers
	if workers <= 0 {
		workers = len(windows)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))

	for i, w := range windows {
		series := panel.CloneSeries()
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &WorkerError{Window: w, Err: fmt.Errorf("panic: %v", r)}
				}
			}()

			block, err := g.rolling(egCtx, g.schema, units, dates, series, w)
			if err != nil {
				return &WorkerError{Window: w, Err: err}
			}
			results[i] = block
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// emptyTable returns a zero-row table carrying the full column set.
func (g *Generator) emptyTable() *FeatureTable {
	cols := g.cfg.Columns
	table := newFeatureTable(cols.Unit, cols.Date, cols.Target, nil, nil)
	table.AddColumn(&Column{Name: cols.Target})
	for _, name := range g.schema.Columns(g.cfg.RollingWindows) {
		table.AddColumn(&Column{Name: name})
	}
	return table
}

// Generate is a convenience wrapper around NewGenerator and Generator.Generate.
func Generate(ctx context.Context, table *RawTable, holidays *HolidayCalendar, cfg Config) (*FeatureTable, error) {
	g, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, table, holidays)
}
