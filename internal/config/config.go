package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketSeries/internal/model"
	"MarketSeries/internal/pipeline"
	"MarketSeries/internal/registry"
	"MarketSeries/internal/table"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// DateLayout is the layout of range.start and range.end.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Tickers []model.TickerSpec `yaml:"tickers"`
	Range   struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"range"`
	DataSource struct {
		Provider    string  `yaml:"provider"`
		TiingoToken string  `yaml:"tiingo_token"`
		RateLimit   float64 `yaml:"rate_limit"`
		Concurrency int     `yaml:"concurrency"`
	} `yaml:"data_source"`
	Fetch struct {
		OnError string `yaml:"on_error"`
	} `yaml:"fetch"`
	Paths struct {
		Earnings string `yaml:"earnings"`
		Output   string `yaml:"output"`
	} `yaml:"paths"`
	Table struct {
		NullPolicy      string `yaml:"null_policy"`
		Collision       string `yaml:"collision"`
		CollisionSuffix string `yaml:"collision_suffix"`
		FloatPrecision  *int   `yaml:"float_precision"`
	} `yaml:"table"`
	Chart struct {
		MAV    []int `yaml:"mav"`
		Width  int   `yaml:"width"`
		Height int   `yaml:"height"`
	} `yaml:"chart"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
	Log   struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load() // .env is optional

	// Environment variable overrides
	if v := os.Getenv("MARKETSERIES_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("TIINGO_TOKEN"); v != "" {
		cfg.DataSource.TiingoToken = v
	}
	if v := os.Getenv("EARNINGS_PATH"); v != "" {
		cfg.Paths.Earnings = v
	}
	if v := os.Getenv("OUTPUT_PATH"); v != "" {
		cfg.Paths.Output = v
	}
	if v := os.Getenv("NULL_POLICY"); v != "" {
		cfg.Table.NullPolicy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = registry.DefaultSpecs()
	}
	if cfg.Range.Start == "" {
		cfg.Range.Start = "2010-01-01"
	}
	if cfg.Range.End == "" {
		cfg.Range.End = "2023-07-01"
	}
	cfg.DataSource.Provider = strings.ToLower(strings.TrimSpace(cfg.DataSource.Provider))
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.RateLimit == 0 {
		cfg.DataSource.RateLimit = 2
	}
	if cfg.DataSource.Concurrency == 0 {
		cfg.DataSource.Concurrency = 1
	}
	if cfg.Fetch.OnError == "" {
		cfg.Fetch.OnError = string(pipeline.OnErrorAbort)
	}
	if cfg.Paths.Earnings == "" {
		cfg.Paths.Earnings = "DataManagement/nvidia_earnings.csv"
	}
	// "none" turns the earnings merge off.
	if strings.EqualFold(cfg.Paths.Earnings, "none") {
		cfg.Paths.Earnings = ""
	}
	if cfg.Paths.Output == "" {
		cfg.Paths.Output = "DataManagement/daily_data.csv"
	}
	if cfg.Table.NullPolicy == "" {
		cfg.Table.NullPolicy = string(table.NullZero)
	}
	if cfg.Table.Collision == "" {
		cfg.Table.Collision = string(table.CollisionReject)
	}
	if cfg.Table.CollisionSuffix == "" {
		cfg.Table.CollisionSuffix = table.DefaultCollisionSuffix
	}
	if cfg.Table.FloatPrecision == nil {
		shortest := -1
		cfg.Table.FloatPrecision = &shortest
	}
	if len(cfg.Chart.MAV) == 0 {
		cfg.Chart.MAV = []int{10, 20, 30}
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 1200
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 600
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 22 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// DateRange parses range.start and range.end as the half-open [start, end).
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, c.Range.Start)
	if err != nil {
		return start, end, fmt.Errorf("%w: range.start: %v", ErrInvalid, err)
	}
	end, err = time.Parse(DateLayout, c.Range.End)
	if err != nil {
		return start, end, fmt.Errorf("%w: range.end: %v", ErrInvalid, err)
	}
	return start, end, nil
}

// Precision returns table.float_precision; -1 means shortest exact.
func (c *Config) Precision() int {
	if c.Table.FloatPrecision == nil {
		return -1
	}
	return *c.Table.FloatPrecision
}

// TelegramEnabled reports whether run summaries should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks every field the pipeline depends on.
func (c *Config) Validate() error {
	if _, err := registry.New(c.Tickers); err != nil {
		return fmt.Errorf("%w: tickers: %v", ErrInvalid, err)
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: range.start %s must be before range.end %s", ErrInvalid, c.Range.Start, c.Range.End)
	}
	switch strings.ToLower(c.DataSource.Provider) {
	case "yahoo":
	case "tiingo":
		if c.DataSource.TiingoToken == "" {
			return fmt.Errorf("%w: data_source.tiingo_token is required for tiingo", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: data_source.provider %q: want yahoo or tiingo", ErrInvalid, c.DataSource.Provider)
	}
	if c.DataSource.RateLimit < 0 {
		return fmt.Errorf("%w: data_source.rate_limit must not be negative", ErrInvalid)
	}
	if c.DataSource.Concurrency < 1 {
		return fmt.Errorf("%w: data_source.concurrency must be at least 1", ErrInvalid)
	}
	if _, err := pipeline.ParseOnError(c.Fetch.OnError); err != nil {
		return fmt.Errorf("%w: fetch.on_error: %v", ErrInvalid, err)
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("%w: paths.output is required", ErrInvalid)
	}
	if _, err := table.ParseNullPolicy(c.Table.NullPolicy); err != nil {
		return fmt.Errorf("%w: table.null_policy: %v", ErrInvalid, err)
	}
	if _, err := table.ParseCollisionPolicy(c.Table.Collision); err != nil {
		return fmt.Errorf("%w: table.collision: %v", ErrInvalid, err)
	}
	if p := c.Precision(); p < -1 || p > 16 {
		return fmt.Errorf("%w: table.float_precision %d out of range [-1, 16]", ErrInvalid, p)
	}
	for _, w := range c.Chart.MAV {
		if w <= 0 {
			return fmt.Errorf("%w: chart.mav window %d must be positive", ErrInvalid, w)
		}
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("%w: chart width and height must be positive", ErrInvalid)
	}
	return nil
}
