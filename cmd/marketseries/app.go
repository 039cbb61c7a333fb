package main

import (
	"strings"

	"github.com/sirupsen/logrus"

	"MarketSeries/internal/collector"
	"MarketSeries/internal/config"
	"MarketSeries/internal/notifier"
	"MarketSeries/internal/pipeline"
	"MarketSeries/internal/recorder"
	"MarketSeries/internal/registry"
	"MarketSeries/internal/table"
)

func newFetcher(c *config.Config) collector.Fetcher {
	if strings.EqualFold(strings.TrimSpace(c.DataSource.Provider), "tiingo") {
		return collector.NewTiingoFetcher(c.DataSource.TiingoToken)
	}
	return collector.NewYahooFetcher(c.Proxy, c.DataSource.RateLimit)
}

// newRecorder falls back to the no-op recorder when SQLite cannot be opened;
// run history is never required for a run to succeed.
func newRecorder(c *config.Config, logger *logrus.Logger) recorder.Recorder {
	if c.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath)
	if err != nil {
		logger.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	logger.WithField("path", c.Database.SQLitePath).Debug("sqlite recorder opened")
	return sr
}

// newPipeline wires every stage from config. The returned recorder must be
// closed by the caller.
func newPipeline(c *config.Config, logger *logrus.Logger) (*pipeline.Pipeline, recorder.Recorder, *notifier.TelegramNotifier, error) {
	reg, err := registry.New(c.Tickers)
	if err != nil {
		return nil, nil, nil, err
	}
	start, end, err := c.DateRange()
	if err != nil {
		return nil, nil, nil, err
	}
	// Validate already checked these names.
	onError, _ := pipeline.ParseOnError(c.Fetch.OnError)
	nullPolicy, _ := table.ParseNullPolicy(c.Table.NullPolicy)
	collision, _ := table.ParseCollisionPolicy(c.Table.Collision)

	fetcher := newFetcher(c)
	col := collector.NewCollector(fetcher, start, end, logger)
	col.Concurrency = c.DataSource.Concurrency
	if err := col.Validate(); err != nil {
		return nil, nil, nil, err
	}

	p := pipeline.New(reg, col, pipeline.Options{
		OnError:      onError,
		EarningsPath: c.Paths.Earnings,
		OutputPath:   c.Paths.Output,
		Join:         table.JoinOptions{Collision: collision, Suffix: c.Table.CollisionSuffix},
		NullPolicy:   nullPolicy,
		Precision:    c.Precision(),
	}, logger)

	rec := newRecorder(c, logger)
	p.Recorder = rec

	var tn *notifier.TelegramNotifier
	if c.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(c.Telegram.BotToken, c.Telegram.ChatID, c.Proxy, logger)
		p.Notifier = tn
	}

	logger.WithFields(logrus.Fields{
		"source":   fetcher.Name(),
		"tickers":  reg.Len(),
		"start":    c.Range.Start,
		"end":      c.Range.End,
		"on_error": onError,
	}).Info("pipeline configured")
	return p, rec, tn, nil
}
