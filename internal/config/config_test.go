package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Tickers, 11)
	assert.Equal(t, "NVDA", cfg.Tickers[0].Symbol)
	assert.Equal(t, "^TNX", cfg.Tickers[10].Symbol)
	assert.Equal(t, "2010-01-01", cfg.Range.Start)
	assert.Equal(t, "2023-07-01", cfg.Range.End)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 1, cfg.DataSource.Concurrency)
	assert.Equal(t, "abort", cfg.Fetch.OnError)
	assert.Equal(t, "DataManagement/nvidia_earnings.csv", cfg.Paths.Earnings)
	assert.Equal(t, "DataManagement/daily_data.csv", cfg.Paths.Output)
	assert.Equal(t, "zero", cfg.Table.NullPolicy)
	assert.Equal(t, "reject", cfg.Table.Collision)
	assert.Equal(t, "_EARN", cfg.Table.CollisionSuffix)
	assert.Equal(t, -1, cfg.Precision())
	assert.Equal(t, []int{10, 20, 30}, cfg.Chart.MAV)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Schedule.Cron)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
tickers:
  - symbol: MSFT
    name: Microsoft
  - symbol: AAPL
range:
  start: "2020-01-01"
  end: "2021-01-01"
fetch:
  on_error: skip
paths:
  earnings: none
table:
  null_policy: ffill
  float_precision: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Tickers, 2)
	assert.Equal(t, "MSFT", cfg.Tickers[0].Symbol)
	assert.Equal(t, "AAPL", cfg.Tickers[1].Symbol)
	assert.Equal(t, "skip", cfg.Fetch.OnError)
	assert.Empty(t, cfg.Paths.Earnings)
	assert.Equal(t, "ffill", cfg.Table.NullPolicy)
	assert.Equal(t, 0, cfg.Precision())

	start, end, err := cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, 2020, start.Year())
	assert.Equal(t, 2021, end.Year())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "paths:\n  output: from-file.csv\n")
	t.Setenv("OUTPUT_PATH", "from-env.csv")
	t.Setenv("NULL_POLICY", "keep")
	t.Setenv("MARKETSERIES_PROVIDER", "tiingo")
	t.Setenv("TIINGO_TOKEN", "secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-env.csv", cfg.Paths.Output)
	assert.Equal(t, "keep", cfg.Table.NullPolicy)
	assert.Equal(t, "tiingo", cfg.DataSource.Provider)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_ProviderIsLowercased(t *testing.T) {
	path := writeConfig(t, "data_source:\n  provider: \" Tiingo \"\n  tiingo_token: secret\n")
	t.Setenv("MARKETSERIES_PROVIDER", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tiingo", cfg.DataSource.Provider)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "tickers: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"reversed range", func(c *Config) { c.Range.Start, c.Range.End = "2023-01-01", "2022-01-01" }},
		{"bad date", func(c *Config) { c.Range.Start = "01/01/2020" }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"tiingo without token", func(c *Config) { c.DataSource.Provider = "tiingo" }},
		{"zero concurrency", func(c *Config) { c.DataSource.Concurrency = 0 }},
		{"unknown on_error", func(c *Config) { c.Fetch.OnError = "retry" }},
		{"unknown null policy", func(c *Config) { c.Table.NullPolicy = "mean" }},
		{"unknown collision", func(c *Config) { c.Table.Collision = "overwrite" }},
		{"duplicate ticker", func(c *Config) { c.Tickers = append(c.Tickers, c.Tickers[0]) }},
		{"bad mav", func(c *Config) { c.Chart.MAV = []int{10, 0} }},
		{"bad precision", func(c *Config) { p := -2; c.Table.FloatPrecision = &p }},
		{"no output", func(c *Config) { c.Paths.Output = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}
