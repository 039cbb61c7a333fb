package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns the window-length simple moving average at every index.
// The first window-1 entries are NaN.
func RollingSMA(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]float64, len(values))
	if len(values) < window {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	copy(out, talib.Sma(values, window))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}
	return out, nil
}
