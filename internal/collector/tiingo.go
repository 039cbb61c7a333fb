package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	quote "github.com/markcheno/go-quote"

	"MarketSeries/internal/model"
)

// TiingoFetcher implements Fetcher using the Tiingo daily endpoint.
// Tiingo bars arrive already adjusted, so AdjClose equals Close and the
// adjustment ratio is 1.
type TiingoFetcher struct {
	Token string
}

// NewTiingoFetcher creates a Tiingo fetcher authenticated by token.
func NewTiingoFetcher(token string) *TiingoFetcher {
	return &TiingoFetcher{Token: token}
}

func (f *TiingoFetcher) Name() string { return "tiingo" }

func (f *TiingoFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.RawBar, error) {
	if f.Token == "" {
		return nil, errors.New("tiingo: token is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// go-quote treats the end date as inclusive.
	last := end.AddDate(0, 0, -1)
	q, err := quote.NewQuoteFromTiingo(symbol, start.Format("2006-01-02"), last.Format("2006-01-02"), quote.Daily, f.Token)
	if err != nil {
		return nil, fmt.Errorf("tiingo fetch: %w", err)
	}
	return quoteToBars(q, start, end)
}

func quoteToBars(q quote.Quote, start, end time.Time) ([]model.RawBar, error) {
	bars := make([]model.RawBar, len(q.Date))
	for i := range q.Date {
		bars[i] = model.RawBar{
			Date:     model.DateOnly(q.Date[i]),
			Open:     q.Open[i],
			High:     q.High[i],
			Low:      q.Low[i],
			Close:    q.Close[i],
			AdjClose: q.Close[i],
			Volume:   q.Volume[i],
		}
	}
	bars = inRange(bars, start, end)
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}
