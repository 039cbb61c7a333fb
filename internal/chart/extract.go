package chart

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"MarketSeries/internal/table"
)

// ErrNoSeries is returned when the table has no usable data for a symbol.
var ErrNoSeries = errors.New("no series")

// BarsFromTable extracts {SYMBOL}_OPEN..VOLUME as candles. Rows where the
// ticker has no prices (all of OHLC zero or null) are omitted, so zero-filled
// gaps do not render as candles at zero.
func BarsFromTable(t *table.Table, symbol string) ([]Bar, error) {
	cols := make([][]float64, 5)
	for i, field := range table.Fields[:5] {
		name := table.ColumnName(symbol, field)
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: column %s not found", ErrNoSeries, name)
		}
		cols[i] = col
	}

	bars := make([]Bar, 0, t.Rows())
	for r, d := range t.Dates {
		b := Bar{Date: d, Open: cols[0][r], High: cols[1][r], Low: cols[2][r], Close: cols[3][r], Volume: cols[4][r]}
		if empty(b.Open) && empty(b.High) && empty(b.Low) && empty(b.Close) {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", ErrNoSeries, symbol)
	}
	return bars, nil
}

// SeriesFromTable extracts one {SYMBOL}_{FIELD} column with its dates.
func SeriesFromTable(t *table.Table, symbol, field string) ([]time.Time, []float64, error) {
	if !slices.Contains(table.Fields, field) {
		return nil, nil, fmt.Errorf("unknown field %q: want one of %v", field, table.Fields)
	}
	name := table.ColumnName(symbol, field)
	col, ok := t.Column(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: column %s not found", ErrNoSeries, name)
	}
	if t.Rows() == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no rows", ErrNoSeries, symbol)
	}
	dates := append([]time.Time(nil), t.Dates...)
	return dates, col, nil
}

// FilterBars keeps bars dated within [from, to]. A zero bound is open.
func FilterBars(bars []Bar, from, to time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !from.IsZero() && b.Date.Before(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func empty(v float64) bool {
	return v == 0 || math.IsNaN(v)
}
