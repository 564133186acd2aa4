package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "forecast.yaml", `
unit_column: sku
rolling_windows: [3, 30]
horizon: 14
interval: 90m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sku", cfg.UnitColumn)
	assert.Equal(t, []int{3, 30}, cfg.RollingWindows)
	assert.Equal(t, 14, cfg.Horizon)
	assert.Equal(t, 90*time.Minute, cfg.Interval)
	// untouched keys keep defaults
	assert.Equal(t, "date", cfg.DateColumn)
	assert.Equal(t, "output", cfg.OutputDir)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "forecast.yaml", "horizon: 14\nworkers: 2\n")
	t.Setenv("FORECAST_HORIZON", "3")
	t.Setenv("FORECAST_ROLLING_WINDOWS", "5,10")
	t.Setenv("FORECAST_USE_MEMORY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Horizon)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []int{5, 10}, cfg.RollingWindows)
	assert.True(t, cfg.UseMemory)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("FORECAST_HORIZON", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))

	t.Setenv("FORECAST_OUTPUT_DIR", "")
	os.Unsetenv("FORECAST_OUTPUT_DIR")
	path := writeFile(t, ".env", "FORECAST_OUTPUT_DIR=reports\n")
	require.NoError(t, LoadEnvFile(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.OutputDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty unit column", func(c *Config) { c.UnitColumn = "" }},
		{"date equals unit", func(c *Config) { c.DateColumn = c.UnitColumn }},
		{"target equals date", func(c *Config) { c.TargetColumn = c.DateColumn }},
		{"zero window", func(c *Config) { c.RollingWindows = []int{7, 0} }},
		{"duplicate window", func(c *Config) { c.RollingWindows = []int{7, 7} }},
		{"zero horizon", func(c *Config) { c.Horizon = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"malformed from date", func(c *Config) { c.From = "01/02/2024" }},
		{"malformed to date", func(c *Config) { c.To = "2024-13-01" }},
		{"from after to", func(c *Config) { c.From, c.To = "2024-02-01", "2024-01-31" }},
		{"duplicate unit", func(c *Config) { c.Units = []string{"a", "a"} }},
		{"empty unit", func(c *Config) { c.Units = []string{""} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestRequireStores(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.RequireStores(), ErrInvalid)

	cfg.UseMemory = true
	assert.NoError(t, cfg.RequireStores())

	cfg.UseMemory = false
	cfg.PostgresDSN = "postgres://localhost/forecast"
	assert.ErrorIs(t, cfg.RequireStores(), ErrInvalid)

	cfg.PersistFeatures = false
	assert.NoError(t, cfg.RequireStores())
}

func TestFeatures(t *testing.T) {
	cfg := Default()
	fc := cfg.Features()

	assert.Equal(t, "store_item", fc.Columns.Unit)
	assert.Equal(t, []int{7, 14, 28}, fc.RollingWindows)
	require.NoError(t, fc.Validate())

	fc.RollingWindows[0] = 99
	assert.Equal(t, 7, cfg.RollingWindows[0])
}

func TestLoad_SelectionFromEnv(t *testing.T) {
	t.Setenv("FORECAST_UNITS", "store_1_item_001,store_2_item_002")
	t.Setenv("FORECAST_FROM", "2024-01-01")
	t.Setenv("FORECAST_TO", "2024-01-31")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"store_1_item_001", "store_2_item_002"}, cfg.Units)
	from, to, err := cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestDateRange_OpenBounds(t *testing.T) {
	cfg := Default()
	from, to, err := cfg.DateRange()
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	cfg.From = "2024-03-05"
	from, to, err = cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), from)
	assert.True(t, to.IsZero())
}
