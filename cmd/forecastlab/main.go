// Package main provides the forecastlab CLI:
// - generate: sales file → feature table CSV + run report
// - ingest: sales/holiday files → PostgreSQL
// - pipeline: one store-backed feature run
// - show: stored feature values of a run
// - migrate: apply PostgreSQL and ClickHouse migrations
// - serve: scheduled pipeline runs + /metrics
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grocery-forecast-lab/internal/config"
	"grocery-forecast-lab/internal/logging"
)

var (
	configPath string
	envFile    string

	cfg    *config.Config
	logger *zap.Logger

	flags flagValues
)

// flagValues holds command-line overrides. Only flags set explicitly are
// applied on top of the file and environment configuration.
type flagValues struct {
	unitColumn        string
	dateColumn        string
	targetColumn      string
	holidayDateColumn string
	sheet             string
	windows           []int
	horizon           int
	workers           int
	units             []string
	from              string
	to                string
	postgresDSN       string
	clickhouseDSN     string
	useMemory         bool
	persistFeatures   bool
	fixtureUnits      int
	fixtureDays       int
	outputDir         string
	metricsAddr       string
	interval          time.Duration
	logLevel          string
	development       bool
}

var rootCmd = &cobra.Command{
	Use:               "forecastlab",
	Short:             "Feature generation for daily demand forecasting",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment if present")

	pf.StringVar(&flags.unitColumn, "unit-column", "", "unit identifier column")
	pf.StringVar(&flags.dateColumn, "date-column", "", "date column")
	pf.StringVar(&flags.targetColumn, "target-column", "", "quantity column")
	pf.StringVar(&flags.holidayDateColumn, "holiday-date-column", "", "date column of the holiday file")
	pf.StringVar(&flags.sheet, "sheet", "", "XLSX sheet name (first sheet if empty)")
	pf.IntSliceVar(&flags.windows, "windows", nil, "rolling window lengths, e.g. 7,14,28")
	pf.IntVar(&flags.horizon, "horizon", 0, "forecast horizon in days")
	pf.IntVar(&flags.workers, "workers", 0, "concurrent rolling tasks (0 = one per window)")
	pf.StringSliceVar(&flags.units, "units", nil, "load only these units, e.g. store_1_item_001,store_2_item_002")
	pf.StringVar(&flags.from, "from", "", "first sales date to load (YYYY-MM-DD)")
	pf.StringVar(&flags.to, "to", "", "last sales date to load (YYYY-MM-DD)")
	pf.StringVar(&flags.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string")
	pf.StringVar(&flags.clickhouseDSN, "clickhouse-dsn", "", "ClickHouse connection string")
	pf.BoolVar(&flags.useMemory, "use-memory", false, "use in-memory storage with synthetic fixtures")
	pf.BoolVar(&flags.persistFeatures, "persist-features", false, "write feature values to the feature store")
	pf.IntVar(&flags.fixtureUnits, "fixture-units", 0, "synthetic units for --use-memory")
	pf.IntVar(&flags.fixtureDays, "fixture-days", 0, "synthetic days for --use-memory")
	pf.StringVar(&flags.outputDir, "output-dir", "", "output directory for reports")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Prometheus metrics HTTP address")
	pf.DurationVar(&flags.interval, "interval", 0, "pipeline interval for serve")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.development, "development", false, "human-readable console logs")

	rootCmd.AddCommand(generateCmd, ingestCmd, pipelineCmd, showCmd, migrateCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, loaded)

	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(loaded.LogLevel, loaded.Development)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	cfg = loaded
	logger = l
	return nil
}

// applyFlags copies explicitly set flags into c.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	changed := cmd.Flags().Changed

	if changed("unit-column") {
		c.UnitColumn = flags.unitColumn
	}
	if changed("date-column") {
		c.DateColumn = flags.dateColumn
	}
	if changed("target-column") {
		c.TargetColumn = flags.targetColumn
	}
	if changed("holiday-date-column") {
		c.HolidayDateColumn = flags.holidayDateColumn
	}
	if changed("sheet") {
		c.Sheet = flags.sheet
	}
	if changed("windows") {
		c.RollingWindows = flags.windows
	}
	if changed("horizon") {
		c.Horizon = flags.horizon
	}
	if changed("workers") {
		c.Workers = flags.workers
	}
	if changed("units") {
		c.Units = flags.units
	}
	if changed("from") {
		c.From = flags.from
	}
	if changed("to") {
		c.To = flags.to
	}
	if changed("postgres-dsn") {
		c.PostgresDSN = flags.postgresDSN
	}
	if changed("clickhouse-dsn") {
		c.ClickhouseDSN = flags.clickhouseDSN
	}
	if changed("use-memory") {
		c.UseMemory = flags.useMemory
	}
	if changed("persist-features") {
		c.PersistFeatures = flags.persistFeatures
	}
	if changed("fixture-units") {
		c.FixtureUnits = flags.fixtureUnits
	}
	if changed("fixture-days") {
		c.FixtureDays = flags.fixtureDays
	}
	if changed("output-dir") {
		c.OutputDir = flags.outputDir
	}
	if changed("metrics-addr") {
		c.MetricsAddr = flags.metricsAddr
	}
	if changed("interval") {
		c.Interval = flags.interval
	}
	if changed("log-level") {
		c.LogLevel = flags.logLevel
	}
	if changed("development") {
		c.Development = flags.development
	}
}
