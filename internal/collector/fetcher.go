package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketSeries/internal/model"
)

// ErrNoData is returned when a source has no bars for a symbol in range.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching daily bars over [start, end).
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.RawBar, error)
	Name() string
}

// FetchError attributes a fetch failure to its symbol.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// inRange keeps bars whose date falls in [start, end).
func inRange(bars []model.RawBar, start, end time.Time) []model.RawBar {
	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(start) || !b.Date.Before(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}
