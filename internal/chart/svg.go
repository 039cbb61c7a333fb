// Package chart renders the wide table as standalone SVG documents: a line
// chart for one series and a candlestick chart with moving averages and a
// volume panel.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Config holds rendering parameters.
type Config struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	FontSize     int
}

// DefaultConfig returns the default rendering parameters.
func DefaultConfig() Config {
	return Config{
		Width:        1200,
		Height:       600,
		MarginTop:    40,
		MarginRight:  40,
		MarginBottom: 60,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// withDefaults fills zero fields from DefaultConfig so callers may set only
// the canvas size.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.MarginTop == 0 {
		c.MarginTop = d.MarginTop
	}
	if c.MarginRight == 0 {
		c.MarginRight = d.MarginRight
	}
	if c.MarginBottom == 0 {
		c.MarginBottom = d.MarginBottom
	}
	if c.MarginLeft == 0 {
		c.MarginLeft = d.MarginLeft
	}
	if c.BgColor == "" {
		c.BgColor = d.BgColor
	}
	if c.GridColor == "" {
		c.GridColor = d.GridColor
	}
	if c.TextColor == "" {
		c.TextColor = d.TextColor
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	return c
}

// plotArea returns the usable drawing area.
func (c Config) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

func svgHeader(cfg Config) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg Config, msg string) string {
	cfg = cfg.withDefaults()
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// writeFrame draws background, title, the rotated y-axis label and the
// horizontal grid for the value range [lo, hi] mapped onto [top, bottom].
func writeFrame(sb *strings.Builder, cfg Config, title, yLabel string, lo, hi float64, top, bottom int) {
	px, _, pw, _ := cfg.plotArea()
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(sb, `<text x="%d" y="24" font-size="16" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(title))
	mid := (top + bottom) / 2
	fmt.Fprintf(sb, `<text x="16" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,16,%d)">%s</text>`,
		mid, cfg.FontSize+1, cfg.TextColor, mid, escapeXML(yLabel))

	const gridLines = 5
	for i := 0; i <= gridLines; i++ {
		v := lo + (hi-lo)*float64(i)/gridLines
		y := bottom - int(float64(bottom-top)*float64(i)/gridLines)
		fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(sb, `<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, formatTick(v))
	}
}

// writeDateAxis labels roughly eight evenly spaced x positions as YYYY-MM.
func writeDateAxis(sb *strings.Builder, cfg Config, dates []time.Time, xOf func(int) float64) {
	_, py, _, ph := cfg.plotArea()
	step := len(dates) / 8
	if step < 1 {
		step = 1
	}
	y := py + ph + 18
	for i := 0; i < len(dates); i += step {
		x := xOf(i)
		fmt.Fprintf(sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			x, y, cfg.FontSize, cfg.TextColor, dates[i].Format("2006-01"))
	}
	fmt.Fprintf(sb, `<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">Date</text>`,
		cfg.Width/2, cfg.Height-12, cfg.FontSize+1, cfg.TextColor)
}

func formatTick(v float64) string {
	if math.Abs(v) >= 1000 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// bounds returns the finite min and max of vals padded by 5% of the span.
func bounds(vals ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, vs := range vals {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	span := hi - lo
	if span < 1e-9 {
		span = math.Max(math.Abs(hi), 1)
	}
	return lo - span*0.05, hi + span*0.05, true
}

// polyline builds an SVG path through the finite points, starting a new
// segment after each gap.
func polyline(vals []float64, xOf func(int) float64, yOf func(float64) float64) string {
	var parts []string
	pen := false
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		parts = append(parts, fmt.Sprintf("%s%.1f,%.1f", cmd, xOf(i), yOf(v)))
	}
	return strings.Join(parts, " ")
}
