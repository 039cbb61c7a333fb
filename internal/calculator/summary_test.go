package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/model"
)

func records(closes ...float64) []model.DerivedRecord {
	recs := make([]model.DerivedRecord, len(closes))
	for i, c := range closes {
		recs[i] = model.DerivedRecord{Date: day(1).AddDate(0, 0, i), AdjHigh: c + 1, AdjLow: c - 1, AdjClose: c}
	}
	return recs
}

func TestCalculate52WeekRange(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	high, low, err := Calculate52WeekRange(records(closes...))
	require.NoError(t, err)
	assert.Equal(t, 301.0, high)
	assert.Equal(t, float64(300-252+1)-1, low, "only the last 252 records count")

	_, _, err = Calculate52WeekRange(nil)
	assert.Error(t, err)
}

func TestCalculate52WeekRange_IgnoresNonFinite(t *testing.T) {
	recs := records(10, 12)
	recs[0].AdjHigh = math.Inf(1)
	high, low, err := Calculate52WeekRange(recs)
	require.NoError(t, err)
	assert.Equal(t, 13.0, high)
	assert.Equal(t, 9.0, low)
}

func TestCalculate52WeekPosition(t *testing.T) {
	tests := []struct {
		name               string
		current, high, low float64
		want               float64
		err                bool
	}{
		{"middle", 15, 20, 10, 0.5, false},
		{"flat", 10, 10, 10, 0.5, false},
		{"clamped high", 25, 20, 10, 1, false},
		{"clamped low", 5, 20, 10, 0, false},
		{"inverted", 15, 10, 20, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate52WeekPosition(tt.current, tt.high, tt.low)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 30)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(rising, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	rsi, err = CalculateRSI([]float64{1, 2}, 14)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rsi)

	alt := make([]float64, 40)
	for i := range alt {
		alt[i] = 100 + float64(i%2)
	}
	rsi, err = CalculateRSI(alt, 14)
	require.NoError(t, err)
	assert.InDelta(t, 50, rsi, 5)

	_, err = CalculateRSI(rising, 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = float64(10 + i)
	}
	recs := records(closes...)
	recs[3].AdjClose = math.NaN()

	s, err := Summarize(recs)
	require.NoError(t, err)
	assert.Equal(t, 34.0, s.LastClose)
	assert.Equal(t, 35.0, s.High52w)
	assert.Equal(t, 9.0, s.Low52w)
	assert.InDelta(t, 25.0/26.0, s.Position52w, 1e-12)
	assert.InDelta(t, 24.5, s.SMA20, 1e-12)
	assert.Equal(t, 100.0, s.RSI14)

	_, err = Summarize(nil)
	assert.Error(t, err)
}
