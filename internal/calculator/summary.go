package calculator

import (
	"errors"

	"MarketSeries/internal/model"
)

// Summary is a last-day snapshot of one ticker, reported after each run.
type Summary struct {
	LastClose   float64
	High52w     float64
	Low52w      float64
	Position52w float64
	SMA20       float64
	RSI14       float64
}

// Summarize computes the snapshot from date-ascending derived records.
// Records with a non-finite adjusted close are skipped.
func Summarize(recs []model.DerivedRecord) (*Summary, error) {
	closes := make([]float64, 0, len(recs))
	for _, r := range recs {
		if finite(r.AdjClose) {
			closes = append(closes, r.AdjClose)
		}
	}
	if len(closes) == 0 {
		return nil, errors.New("no finite closes")
	}

	s := &Summary{LastClose: closes[len(closes)-1]}
	var err error
	if s.High52w, s.Low52w, err = Calculate52WeekRange(recs); err != nil {
		return nil, err
	}
	if s.Position52w, err = Calculate52WeekPosition(s.LastClose, s.High52w, s.Low52w); err != nil {
		return nil, err
	}
	if sma, err := CalculateSMA(closes, 20); err == nil {
		s.SMA20 = sma
	}
	if s.RSI14, err = CalculateRSI(closes, 14); err != nil {
		return nil, err
	}
	return s, nil
}
