package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/model"
)

func day(d int) time.Time {
	return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestDerive_NoAdjustment(t *testing.T) {
	bars := []model.RawBar{
		{Date: day(3), Open: 99, High: 101, Low: 98, Close: 100, AdjClose: 100, Volume: 1000},
		{Date: day(4), Open: 105, High: 112, Low: 104, Close: 110, AdjClose: 110, Volume: 2000},
	}
	recs := Derive(bars)
	require.Len(t, recs, 2)

	assert.Equal(t, 1.0, AdjustmentRatio(bars[0]))
	assert.Equal(t, 99.0, recs[0].AdjOpen)
	assert.Equal(t, 1000.0, recs[0].AdjVolume)
	assert.True(t, math.IsNaN(recs[0].Ret))
	assert.True(t, math.IsNaN(recs[0].LogRet))

	assert.InDelta(t, 0.10, recs[1].Ret, 1e-12)
	assert.InDelta(t, math.Log(1.1), recs[1].LogRet, 1e-12)
}

func TestDerive_SplitAdjusted(t *testing.T) {
	// 2:1 split applied retroactively: adjusted close is half the raw close.
	bars := []model.RawBar{
		{Date: day(3), Open: 190, High: 210, Low: 180, Close: 200, AdjClose: 100, Volume: 500},
	}
	rec := Derive(bars)[0]
	assert.Equal(t, 95.0, rec.AdjOpen)
	assert.Equal(t, 105.0, rec.AdjHigh)
	assert.Equal(t, 90.0, rec.AdjLow)
	assert.Equal(t, 100.0, rec.AdjClose)
	assert.Equal(t, 1000.0, rec.AdjVolume)
	// adj_close == close * ratio by construction
	assert.InDelta(t, bars[0].Close*AdjustmentRatio(bars[0]), rec.AdjClose, 1e-12)
}

func TestDerive_ZeroCloseIsNonFinite(t *testing.T) {
	bars := []model.RawBar{
		{Date: day(3), Open: 10, High: 11, Low: 9, Close: 10, AdjClose: 10, Volume: 100},
		{Date: day(4), Open: 10, High: 11, Low: 9, Close: 0, AdjClose: 10, Volume: 100},
	}
	rec := Derive(bars)[1]
	assert.True(t, math.IsInf(rec.AdjOpen, 0))
	assert.True(t, math.IsInf(rec.AdjHigh, 0))
	assert.True(t, math.IsInf(rec.AdjLow, 0))
	assert.Equal(t, 0.0, rec.AdjVolume)
	assert.InDelta(t, 0.0, rec.Ret, 1e-12)
}

func TestDerive_ReturnIdentities(t *testing.T) {
	closes := []float64{50, 51.5, 49.25, 49.25, 60.1, 58}
	bars := make([]model.RawBar, len(closes))
	for i, c := range closes {
		bars[i] = model.RawBar{Date: day(i + 1), Open: c, High: c, Low: c, Close: c * 2, AdjClose: c, Volume: 10}
	}
	recs := Derive(bars)
	for i := 1; i < len(recs); i++ {
		assert.InDelta(t, closes[i]/closes[i-1]-1, recs[i].Ret, 1e-12)
		assert.InDelta(t, math.Log(closes[i])-math.Log(closes[i-1]), recs[i].LogRet, 1e-12)
	}
}

func TestDerive_Empty(t *testing.T) {
	assert.Empty(t, Derive(nil))
}

func TestCheckOrder(t *testing.T) {
	ok := []model.RawBar{{Date: day(3)}, {Date: day(4)}}
	assert.NoError(t, CheckOrder(ok))
	assert.NoError(t, CheckOrder(nil))

	dup := []model.RawBar{{Date: day(3)}, {Date: day(3)}}
	assert.True(t, errors.Is(CheckOrder(dup), ErrUnordered))

	back := []model.RawBar{{Date: day(4)}, {Date: day(3)}}
	assert.True(t, errors.Is(CheckOrder(back), ErrUnordered))
}
