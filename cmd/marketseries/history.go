package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"MarketSeries/internal/recorder"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the SQLite history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.SQLitePath == "" {
			return errors.New("database.sqlite_path is not configured")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")

		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()

		if runID != "" {
			return printTickerFetches(os.Stdout, rec, runID)
		}
		return printRuns(os.Stdout, rec, limit)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to show")
	historyCmd.Flags().String("run", "", "show per-ticker fetches of one run ID")
}

func printRuns(out io.Writer, rec *recorder.SQLiteRecorder, limit int) error {
	runs, err := rec.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tSTAGE\tTICKERS\tFAILED\tROWS\tCOLS\tDURATION\tRUN ID")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, dash(r.Stage),
			r.Tickers, r.Failed, r.Rows, r.Columns,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), r.RunID)
	}
	return w.Flush()
}

func printTickerFetches(out io.Writer, rec *recorder.SQLiteRecorder, runID string) error {
	fetches, err := rec.TickerFetches(runID)
	if err != nil {
		return err
	}
	if len(fetches) == 0 {
		return fmt.Errorf("no ticker fetches recorded for run %s", runID)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tBARS\tFIRST\tLAST\tDURATION\tERROR")
	for _, f := range fetches {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			f.Symbol, f.Bars, dash(f.FirstDate), dash(f.LastDate), f.Duration, dash(f.Error))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
