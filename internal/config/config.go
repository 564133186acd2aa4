// Package config loads application configuration.
//
// Sources are applied in order, each overriding the previous one:
// built-in defaults, an optional YAML file, FORECAST_* environment
// variables (a .env file is loaded into the environment first), and
// finally command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"grocery-forecast-lab/internal/features"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "FORECAST"

const dateLayout = "2006-01-02"

// ErrInvalid is returned when the loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Config represents the complete application configuration.
type Config struct {
	// Input columns
	UnitColumn        string `mapstructure:"unit_column" envconfig:"UNIT_COLUMN" validate:"required"`
	DateColumn        string `mapstructure:"date_column" envconfig:"DATE_COLUMN" validate:"required,nefield=UnitColumn"`
	TargetColumn      string `mapstructure:"target_column" envconfig:"TARGET_COLUMN" validate:"required,nefield=UnitColumn,nefield=DateColumn"`
	HolidayDateColumn string `mapstructure:"holiday_date_column" envconfig:"HOLIDAY_DATE_COLUMN" validate:"required"`
	Sheet             string `mapstructure:"sheet" envconfig:"SHEET"`

	// Feature generation
	RollingWindows []int `mapstructure:"rolling_windows" envconfig:"ROLLING_WINDOWS" validate:"unique,dive,gt=0"`
	Horizon        int   `mapstructure:"horizon" envconfig:"HORIZON" validate:"gte=1"`
	Workers        int   `mapstructure:"workers" envconfig:"WORKERS" validate:"gte=0"`

	// Sales selection; empty loads everything. Dates are inclusive.
	Units []string `mapstructure:"units" envconfig:"UNITS" validate:"unique,dive,required"`
	From  string   `mapstructure:"from" envconfig:"FROM" validate:"omitempty,datetime=2006-01-02"`
	To    string   `mapstructure:"to" envconfig:"TO" validate:"omitempty,datetime=2006-01-02"`

	// Storage
	UseMemory       bool   `mapstructure:"use_memory" envconfig:"USE_MEMORY"`
	PostgresDSN     string `mapstructure:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	ClickhouseDSN   string `mapstructure:"clickhouse_dsn" envconfig:"CLICKHOUSE_DSN"`
	PersistFeatures bool   `mapstructure:"persist_features" envconfig:"PERSIST_FEATURES"`

	// Synthetic fixtures for in-memory runs
	FixtureUnits int `mapstructure:"fixture_units" envconfig:"FIXTURE_UNITS" validate:"gte=1"`
	FixtureDays  int `mapstructure:"fixture_days" envconfig:"FIXTURE_DAYS" validate:"gte=1"`

	// Output and service
	OutputDir   string        `mapstructure:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	MetricsAddr string        `mapstructure:"metrics_addr" envconfig:"METRICS_ADDR" validate:"required"`
	Interval    time.Duration `mapstructure:"interval" envconfig:"INTERVAL" validate:"gt=0"`

	// Logging
	LogLevel    string `mapstructure:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development" envconfig:"DEVELOPMENT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UnitColumn:        "store_item",
		DateColumn:        "date",
		TargetColumn:      "sales",
		HolidayDateColumn: "date",
		RollingWindows:    []int{7, 14, 28},
		Horizon:           7,
		Workers:           0,
		PersistFeatures:   true,
		FixtureUnits:      5,
		FixtureDays:       400,
		OutputDir:         "output",
		MetricsAddr:       ":9090",
		Interval:          24 * time.Hour,
		LogLevel:          "info",
	}
}

// LoadEnvFile loads variables from a .env file into the environment.
// A missing file is not an error. Existing variables are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped if path is empty) and the environment. The result is not
// validated; call Validate after applying flag overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, _, err := c.DateRange(); err != nil {
		return err
	}
	return nil
}

// DateRange parses From and To. An empty bound is returned as the zero time.
func (c *Config) DateRange() (from, to time.Time, err error) {
	if c.From != "" {
		if from, err = time.Parse(dateLayout, c.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from: %v", ErrInvalid, err)
		}
	}
	if c.To != "" {
		if to, err = time.Parse(dateLayout, c.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to: %v", ErrInvalid, err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalid, c.From, c.To)
	}
	return from, to, nil
}

// RequireStores checks that database DSNs are set unless in-memory
// storage is selected.
func (c *Config) RequireStores() error {
	if c.UseMemory {
		return nil
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("%w: postgres DSN is required without in-memory storage", ErrInvalid)
	}
	if c.PersistFeatures && c.ClickhouseDSN == "" {
		return fmt.Errorf("%w: clickhouse DSN is required to persist features", ErrInvalid)
	}
	return nil
}

// Columns returns the input column names.
func (c *Config) Columns() features.Columns {
	return features.Columns{
		Unit:   c.UnitColumn,
		Date:   c.DateColumn,
		Target: c.TargetColumn,
	}
}

// Features returns the feature generation configuration.
func (c *Config) Features() features.Config {
	windows := make([]int, len(c.RollingWindows))
	copy(windows, c.RollingWindows)
	return features.Config{
		Columns:        c.Columns(),
		RollingWindows: windows,
		Workers:        c.Workers,
	}
}
