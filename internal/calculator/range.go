package calculator

import (
	"errors"
	"math"

	"MarketSeries/internal/model"
)

// TradingDaysPerYear is the lookback of the 52-week range.
const TradingDaysPerYear = 252

// Calculate52WeekRange scans the most recent 252 records and returns the
// adjusted high and low. Non-finite values are ignored.
func Calculate52WeekRange(recs []model.DerivedRecord) (high, low float64, err error) {
	if len(recs) == 0 {
		return 0, 0, errors.New("no records provided")
	}
	start := len(recs) - TradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range recs[start:] {
		if finite(r.AdjHigh) && r.AdjHigh > high {
			high = r.AdjHigh
		}
		if finite(r.AdjLow) && r.AdjLow < low {
			low = r.AdjLow
		}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, errors.New("no finite prices in range")
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
