package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"MarketSeries/internal/chart"
	"MarketSeries/internal/output"
	"MarketSeries/internal/registry"
	"MarketSeries/internal/table"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render SVG charts from the output CSV",
}

var plotLineCmd = &cobra.Command{
	Use:   "line",
	Short: "Line chart of one {SYMBOL}_{FIELD} series",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, _ := cmd.Flags().GetString("symbol")
		field, _ := cmd.Flags().GetString("field")
		field = strings.ToUpper(field)

		t, err := loadTable(cmd)
		if err != nil {
			return err
		}
		dates, values, err := chart.SeriesFromTable(t, symbol, field)
		if err != nil {
			return err
		}
		svg := chart.LineChart(dates, values, companyName(symbol), field, chartConfig())
		return writeSVG(cmd, fmt.Sprintf("%s_%s.svg", safeName(symbol), field), svg)
	},
}

var plotCandleCmd = &cobra.Command{
	Use:   "candle",
	Short: "Candlestick chart with moving averages and volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, _ := cmd.Flags().GetString("symbol")
		mav, _ := cmd.Flags().GetString("mav")
		fromS, _ := cmd.Flags().GetString("from")
		toS, _ := cmd.Flags().GetString("to")

		windows := cfg.Chart.MAV
		if mav != "" {
			var err error
			if windows, err = parseWindows(mav); err != nil {
				return err
			}
		}
		from, err := parseOptionalDate(fromS)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		to, err := parseOptionalDate(toS)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		t, err := loadTable(cmd)
		if err != nil {
			return err
		}
		bars, err := chart.BarsFromTable(t, symbol)
		if err != nil {
			return err
		}
		bars = chart.FilterBars(bars, from, to)
		if len(bars) == 0 {
			return fmt.Errorf("%w: %s has no rows between %s and %s", chart.ErrNoSeries, symbol, fromS, toS)
		}
		svg := chart.CandlestickChart(bars, companyName(symbol), windows, chartConfig())
		return writeSVG(cmd, fmt.Sprintf("%s_candle.svg", safeName(symbol)), svg)
	},
}

func init() {
	for _, c := range []*cobra.Command{plotLineCmd, plotCandleCmd} {
		c.Flags().String("symbol", "NVDA", "ticker symbol")
		c.Flags().String("input", "", "table CSV (default: paths.output)")
		c.Flags().String("out", "", "SVG output path (default: <symbol>_<kind>.svg)")
	}
	plotLineCmd.Flags().String("field", "CLOSE", "field: "+strings.Join(table.Fields, ", "))
	plotCandleCmd.Flags().String("mav", "", "comma-separated moving average windows (default: chart.mav)")
	plotCandleCmd.Flags().String("from", "", "first date, YYYY-MM-DD")
	plotCandleCmd.Flags().String("to", "", "last date, YYYY-MM-DD")

	plotCmd.AddCommand(plotLineCmd)
	plotCmd.AddCommand(plotCandleCmd)
}

func loadTable(cmd *cobra.Command) (*table.Table, error) {
	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		input = cfg.Paths.Output
	}
	t, err := output.ReadCSV(input)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return t, nil
}

func writeSVG(cmd *cobra.Command, fallback, svg string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fallback
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	log.WithField("path", out).Info("chart written")
	return nil
}

func chartConfig() chart.Config {
	c := chart.DefaultConfig()
	c.Width, c.Height = cfg.Chart.Width, cfg.Chart.Height
	return c
}

func companyName(symbol string) string {
	if reg, err := registry.New(cfg.Tickers); err == nil {
		if name, ok := reg.Lookup(symbol); ok {
			return name
		}
	}
	return symbol
}

// safeName strips characters like ^ from index symbols for file names.
func safeName(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return -1
		}
	}, symbol)
}

func parseWindows(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("invalid moving average window %q", part)
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no moving average windows in %q", s)
	}
	return out, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(output.DateLayout, s)
}
