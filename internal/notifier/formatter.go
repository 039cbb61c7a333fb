package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketSeries/internal/pipeline"
	"MarketSeries/internal/recorder"
)

// FormatRunSummary formats a successful run for Telegram.
func FormatRunSummary(res *pipeline.RunResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>MarketSeries run</b> | %s\n\n", res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Rows: %d | Columns: %d\n", res.Rows, res.Columns))
	b.WriteString(fmt.Sprintf("Output: <code>%s</code>\n", html.EscapeString(res.OutputPath)))
	b.WriteString(fmt.Sprintf("Duration: %s\n\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Second)))

	b.WriteString("📈 <b>Tickers:</b>\n")
	writeTickers(&b, res.Tickers)
	return b.String()
}

// FormatRunFailure formats a failed run for Telegram.
func FormatRunFailure(res *pipeline.RunResult, err error) string {
	var b strings.Builder

	stage := pipeline.StageOf(err)
	if stage == "" {
		stage = "run"
	}
	b.WriteString(fmt.Sprintf("❌ <b>MarketSeries run failed</b> | %s\n\n", res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Stage: %s\n", stage))
	b.WriteString(fmt.Sprintf("Error: %s\n", html.EscapeString(err.Error())))
	b.WriteString("Previous output left untouched.\n")
	if len(res.Tickers) > 0 {
		b.WriteString("\n📈 <b>Tickers:</b>\n")
		writeTickers(&b, res.Tickers)
	}
	return b.String()
}

func writeTickers(b *strings.Builder, tickers []pipeline.TickerOutcome) {
	for _, t := range tickers {
		sym := html.EscapeString(t.Symbol)
		if t.Err != nil {
			b.WriteString(fmt.Sprintf("  ✗ %s: %s\n", sym, html.EscapeString(t.Err.Error())))
			continue
		}
		b.WriteString(fmt.Sprintf("  ✓ %s: %d bars (%s → %s)",
			sym, t.Bars, t.First.Format("2006-01-02"), t.Last.Format("2006-01-02")))
		if s := t.Summary; s != nil {
			b.WriteString(fmt.Sprintf(" | close %.2f, 52w %.0f%%, RSI %.0f", s.LastClose, s.Position52w*100, s.RSI14))
		}
		b.WriteString("\n")
	}
}

// FormatHistory formats recorded runs, newest first.
func FormatHistory(runs []recorder.RunRecord) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		status := "✓"
		if r.Status != recorder.StatusOK {
			status = "✗ " + r.Stage
		}
		b.WriteString(fmt.Sprintf("%s %s rows=%d cols=%d failed=%d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), status, r.Rows, r.Columns, r.Failed))
	}
	return b.String()
}
