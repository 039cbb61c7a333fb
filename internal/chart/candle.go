package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"MarketSeries/internal/calculator"
)

// Bar is one OHLCV candle.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DefaultWindows are the moving-average lengths used when none are given.
var DefaultWindows = []int{10, 20, 30}

var maColors = []string{"#1f77b4", "#2ca02c", "#d62728", "#9467bd", "#ff7f0e"}

const (
	upColor   = "#26a69a"
	downColor = "#ef5350"
)

// CandlestickChart renders bars titled "{company} Stock Price" with one
// closing-price SMA per window and a volume panel in the bottom fifth.
// Non-positive windows are skipped.
func CandlestickChart(bars []Bar, company string, windows []int, cfg Config) string {
	cfg = cfg.withDefaults()
	if len(bars) == 0 {
		return emptySVG(cfg, "No data available")
	}
	if windows == nil {
		windows = DefaultWindows
	}

	n := len(bars)
	closes := make([]float64, n)
	lows := make([]float64, n)
	highs := make([]float64, n)
	dates := make([]time.Time, n)
	maxVol := 0.0
	for i, b := range bars {
		closes[i], lows[i], highs[i], dates[i] = b.Close, b.Low, b.High, b.Date
		if !math.IsNaN(b.Volume) && b.Volume > maxVol {
			maxVol = b.Volume
		}
	}

	type overlay struct {
		label  string
		color  string
		values []float64
	}
	var overlays []overlay
	for i, w := range windows {
		sma, err := calculator.RollingSMA(closes, w)
		if err != nil {
			continue
		}
		overlays = append(overlays, overlay{
			label:  fmt.Sprintf("MA%d", w),
			color:  maColors[i%len(maColors)],
			values: sma,
		})
	}

	lo, hi, ok := bounds(lows, highs)
	if !ok {
		return emptySVG(cfg, "No price data")
	}

	px, py, pw, ph := cfg.plotArea()
	volHeight := float64(ph) * 0.2
	priceBottom := py + ph - int(volHeight) - 8
	slot := float64(pw) / float64(n)
	body := math.Max(slot*0.7, 1)
	xOf := func(i int) float64 { return float64(px) + (float64(i)+0.5)*slot }
	yOf := func(v float64) float64 {
		return float64(priceBottom) - (v-lo)/(hi-lo)*float64(priceBottom-py)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg, company+" Stock Price", "Price ($)", lo, hi, py, priceBottom)

	// Volume
	if maxVol > 0 {
		for i, b := range bars {
			if math.IsNaN(b.Volume) || b.Volume <= 0 {
				continue
			}
			vh := b.Volume / maxVol * volHeight
			color := upColor
			if b.Close < b.Open {
				color = downColor
			}
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" opacity="0.5"/>`,
				xOf(i)-body/2, float64(py+ph)-vh, body, vh, color)
		}
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">Volume</text>`,
			px-5, py+ph-int(volHeight/2), cfg.FontSize, cfg.TextColor)
	}

	// Candles
	for i, b := range bars {
		if math.IsNaN(b.Open) || math.IsNaN(b.Close) || math.IsNaN(b.High) || math.IsNaN(b.Low) {
			continue
		}
		color := upColor
		if b.Close < b.Open {
			color = downColor
		}
		cx := xOf(i)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			cx, yOf(b.High), cx, yOf(b.Low), color)
		top, bottom := yOf(math.Max(b.Open, b.Close)), yOf(math.Min(b.Open, b.Close))
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			cx-body/2, top, body, math.Max(bottom-top, 1), color)
	}

	// Moving averages and legend
	for i, o := range overlays {
		if d := polyline(o.values, xOf, yOf); d != "" {
			fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="1.5" opacity="0.9"/>`, d, o.color)
		}
		ly := py + 14 + i*16
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, o.color)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, o.label)
	}

	writeDateAxis(&sb, cfg, dates, xOf)
	sb.WriteString("</svg>")
	return sb.String()
}
