package chart

import (
	"fmt"
	"strings"
	"time"
)

// LineChart renders one series titled "{company} {seriesType} Series".
func LineChart(dates []time.Time, values []float64, company, seriesType string, cfg Config) string {
	cfg = cfg.withDefaults()
	if len(dates) == 0 || len(values) != len(dates) {
		return emptySVG(cfg, "No data available")
	}
	lo, hi, ok := bounds(values)
	if !ok {
		return emptySVG(cfg, "No data points")
	}

	px, py, pw, ph := cfg.plotArea()
	n := len(values)
	xOf := func(i int) float64 {
		if n == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(n-1)
	}
	yOf := func(v float64) float64 {
		return float64(py+ph) - (v-lo)/(hi-lo)*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg, fmt.Sprintf("%s %s Series", company, seriesType), seriesType, lo, hi, py, py+ph)
	if d := polyline(values, xOf, yOf); d != "" {
		fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="#1f77b4" stroke-width="1.2"/>`, d)
	}
	writeDateAxis(&sb, cfg, dates, xOf)
	sb.WriteString("</svg>")
	return sb.String()
}
