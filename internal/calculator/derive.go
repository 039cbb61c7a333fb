package calculator

import (
	"errors"
	"fmt"
	"math"

	"MarketSeries/internal/model"
)

// ErrUnordered is returned by CheckOrder for bars that are not strictly
// ascending by date.
var ErrUnordered = errors.New("bars not strictly ascending by date")

// CheckOrder verifies the ordering Derive relies on.
func CheckOrder(bars []model.RawBar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Date.Before(bars[i].Date) {
			return fmt.Errorf("%w: %s after %s", ErrUnordered,
				bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// AdjustmentRatio returns AdjClose/Close for a bar. A zero close yields a
// non-finite ratio which is propagated, not treated as an error.
func AdjustmentRatio(b model.RawBar) float64 {
	return b.AdjClose / b.Close
}

// Derive back-calculates adjusted OHLCV from the adjustment ratio and computes
// simple and log returns on the adjusted close. Bars must be date-ascending.
// Returns for the first bar are NaN.
func Derive(bars []model.RawBar) []model.DerivedRecord {
	out := make([]model.DerivedRecord, len(bars))
	for i, b := range bars {
		ratio := AdjustmentRatio(b)
		rec := model.DerivedRecord{
			Date:      b.Date,
			AdjOpen:   b.Open * ratio,
			AdjHigh:   b.High * ratio,
			AdjLow:    b.Low * ratio,
			AdjClose:  b.AdjClose,
			AdjVolume: b.Volume / ratio,
			Ret:       math.NaN(),
			LogRet:    math.NaN(),
		}
		if i > 0 {
			prev := bars[i-1].AdjClose
			rec.Ret = b.AdjClose/prev - 1
			rec.LogRet = math.Log(b.AdjClose / prev)
		}
		out[i] = rec
	}
	return out
}
