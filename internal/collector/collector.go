package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"MarketSeries/internal/model"
)

// MockFetcher returns fixed per-symbol bars for development and testing.
type MockFetcher struct {
	Bars   map[string][]model.RawBar
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.RawBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	src := m.Bars[symbol]
	bars := make([]model.RawBar, len(src))
	copy(bars, src)
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	bars = inRange(bars, start, end)
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// TickerResult is the outcome of fetching one ticker.
type TickerResult struct {
	Spec     model.TickerSpec
	Bars     []model.RawBar
	Err      error
	Duration time.Duration
}

// Collector fetches raw bars for every ticker in a registry.
type Collector struct {
	Fetcher     Fetcher
	Start       time.Time
	End         time.Time
	Concurrency int
	// FailFast cancels outstanding fetches after the first failure.
	FailFast bool
	Logger   *logrus.Logger
}

// NewCollector creates a Collector over the half-open range [start, end).
func NewCollector(fetcher Fetcher, start, end time.Time, logger *logrus.Logger) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		Start:       start,
		End:         end,
		Concurrency: 1,
		Logger:      logger,
	}
}

// CollectAll fetches every spec and returns one result per spec in the same
// order, regardless of completion order.
func (c *Collector) CollectAll(ctx context.Context, specs []model.TickerSpec) []TickerResult {
	results := make([]TickerResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, spec := range specs {
		results[i].Spec = spec
		g.Go(func() error {
			began := time.Now()
			bars, err := c.Fetcher.FetchDailyBars(gctx, spec.Symbol, c.Start, c.End)
			res := &results[i]
			res.Duration = time.Since(began)
			if err == nil && len(bars) == 0 {
				err = ErrNoData
			}
			if err != nil {
				res.Err = &FetchError{Symbol: spec.Symbol, Err: err}
				c.Logger.WithFields(logrus.Fields{"symbol": spec.Symbol, "source": c.Fetcher.Name()}).
					WithError(err).Warn("fetch failed")
				if c.FailFast {
					return res.Err
				}
				return nil
			}
			res.Bars = bars
			c.Logger.WithFields(logrus.Fields{
				"symbol": spec.Symbol,
				"bars":   len(bars),
				"first":  bars[0].Date.Format("2006-01-02"),
				"last":   bars[len(bars)-1].Date.Format("2006-01-02"),
			}).Info("fetched")
			return nil
		})
	}
	_ = g.Wait() // failures are reported per ticker
	return results
}

// Validate checks the collector range.
func (c *Collector) Validate() error {
	if !c.Start.Before(c.End) {
		return fmt.Errorf("start %s must be before end %s", c.Start.Format("2006-01-02"), c.End.Format("2006-01-02"))
	}
	return nil
}
