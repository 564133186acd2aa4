package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grocery-forecast-lab/internal/domain"
	"grocery-forecast-lab/internal/observability"
	"grocery-forecast-lab/internal/source"
	"grocery-forecast-lab/internal/storage/memory"
)

var (
	inputPath    string
	holidaysPath string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the feature table from a sales file",
	Long: `Reads a CSV, XLSX or Parquet sales log and an optional holiday file,
generates features and the forecast target, and writes features.csv,
column_summary.csv and REPORT.md to the output directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		records, holidays, err := readInput(ctx)
		if err != nil {
			return err
		}

		stores := &allStores{
			salesStore:   memory.NewSalesStore(),
			holidayStore: memory.NewHolidayStore(),
		}
		if err := stores.salesStore.InsertBulk(ctx, records); err != nil {
			return fmt.Errorf("stage sales: %w", err)
		}
		if err := stores.holidayStore.InsertBulk(ctx, holidays); err != nil {
			return fmt.Errorf("stage holidays: %w", err)
		}

		result, err := newOrchestrator(stores).Run(ctx)
		if err != nil {
			return err
		}
		logResult(result)
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a sales file and holiday file into PostgreSQL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if cfg.UseMemory {
			return fmt.Errorf("ingest writes to PostgreSQL; --use-memory is not supported")
		}

		records, holidays, err := readInput(ctx)
		if err != nil {
			return err
		}

		stores, cleanup, err := createStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := stores.salesStore.InsertBulk(ctx, records); err != nil {
			return fmt.Errorf("insert sales: %w", err)
		}
		if err := stores.holidayStore.InsertBulk(ctx, holidays); err != nil {
			return fmt.Errorf("insert holidays: %w", err)
		}

		logger.Info("ingest completed", zap.Int("sales_records", len(records)), zap.Int("holidays", len(holidays)))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, ingestCmd} {
		cmd.Flags().StringVar(&inputPath, "input", "", "sales log file (.csv, .xlsx, .parquet)")
		cmd.Flags().StringVar(&holidaysPath, "holidays", "", "holiday calendar file (optional)")
		_ = cmd.MarkFlagRequired("input")
	}
}

// readInput reads the sales log and the optional holiday calendar.
func readInput(ctx context.Context) ([]*domain.SalesRecord, []domain.Holiday, error) {
	table, err := source.ReadFile(ctx, inputPath, source.Options{Sheet: cfg.Sheet, DateColumn: cfg.DateColumn})
	if err != nil {
		recordSourceError(inputPath)
		return nil, nil, fmt.Errorf("read %s: %w", inputPath, err)
	}

	records, err := source.SalesFromTable(table, cfg.Columns())
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", inputPath, err)
	}
	logger.Info("sales file read", zap.String("path", inputPath), zap.Int("rows", len(table.Rows)), zap.Int("records", len(records)))

	if holidaysPath == "" {
		logger.Warn("no holiday calendar, holiday distances will be undefined")
		return records, nil, nil
	}

	holidays, err := source.ReadHolidays(ctx, holidaysPath, cfg.HolidayDateColumn)
	if err != nil {
		recordSourceError(holidaysPath)
		return nil, nil, fmt.Errorf("read %s: %w", holidaysPath, err)
	}
	return records, holidays, nil
}

func recordSourceError(path string) {
	format, err := source.DetectFormat(path)
	if err != nil {
		format = "unknown"
	}
	observability.RecordSourceError(string(format))
}
