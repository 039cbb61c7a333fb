// Package registry holds the ordered set of tickers a run iterates over.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"MarketSeries/internal/model"
)

var defaultSpecs = []model.TickerSpec{
	{Symbol: "NVDA", DisplayName: "Nvidia"},
	{Symbol: "PLTR", DisplayName: "Palantir"},
	{Symbol: "TSLA", DisplayName: "Tesla"},
	{Symbol: "MSFT", DisplayName: "Microsoft"},
	{Symbol: "AAPL", DisplayName: "Apple"},
	{Symbol: "AMZN", DisplayName: "Amazon"},
	{Symbol: "NFLX", DisplayName: "Netflix"},
	{Symbol: "GOOGL", DisplayName: "Google"},
	{Symbol: "DJI", DisplayName: "Dow Jones Index"},
	{Symbol: "^GSPC", DisplayName: "S&P 500"},
	{Symbol: "^TNX", DisplayName: "10-Year US Government Bond"},
}

// Registry is an immutable, ordered symbol → display name mapping.
type Registry struct {
	specs []model.TickerSpec
	names map[string]string
}

// DefaultSpecs returns a copy of the built-in ticker list.
func DefaultSpecs() []model.TickerSpec {
	out := make([]model.TickerSpec, len(defaultSpecs))
	copy(out, defaultSpecs)
	return out
}

// New validates specs and builds a Registry preserving their order.
func New(specs []model.TickerSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, errors.New("registry: no tickers")
	}
	r := &Registry{
		specs: make([]model.TickerSpec, 0, len(specs)),
		names: make(map[string]string, len(specs)),
	}
	for i, s := range specs {
		sym := strings.TrimSpace(s.Symbol)
		if sym == "" {
			return nil, fmt.Errorf("registry: ticker %d has empty symbol", i)
		}
		if _, dup := r.names[sym]; dup {
			return nil, fmt.Errorf("registry: duplicate symbol %q", sym)
		}
		name := s.DisplayName
		if name == "" {
			name = sym
		}
		r.names[sym] = name
		r.specs = append(r.specs, model.TickerSpec{Symbol: sym, DisplayName: name})
	}
	return r, nil
}

// Specs returns the tickers in iteration order.
func (r *Registry) Specs() []model.TickerSpec {
	out := make([]model.TickerSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of tickers.
func (r *Registry) Len() int { return len(r.specs) }

// Lookup returns the display name for symbol.
func (r *Registry) Lookup(symbol string) (string, bool) {
	name, ok := r.names[symbol]
	return name, ok
}
