package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/recorder"
)

func TestPrintHistory(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	var buf bytes.Buffer
	require.NoError(t, printRuns(&buf, rec, 10))
	assert.Equal(t, "No runs recorded yet.\n", buf.String())

	started := time.Date(2023, 7, 3, 22, 0, 0, 0, time.UTC)
	require.NoError(t, rec.RecordRun(&recorder.RunRecord{
		RunID: "run-1", StartedAt: started, FinishedAt: started.Add(1500 * time.Millisecond),
		Status: recorder.StatusOK, Tickers: 2, Rows: 3, Columns: 16,
	}))
	require.NoError(t, rec.RecordTicker(&recorder.TickerRecord{
		RunID: "run-1", Symbol: "NVDA", Bars: 4, FirstDate: "2023-01-03", LastDate: "2023-01-06",
		Duration: 120 * time.Millisecond,
	}))
	require.NoError(t, rec.RecordTicker(&recorder.TickerRecord{
		RunID: "run-1", Symbol: "PLTR", Error: "no data",
	}))

	buf.Reset()
	require.NoError(t, printRuns(&buf, rec, 10))
	assert.Contains(t, buf.String(), "RUN ID")
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "1.5s")

	buf.Reset()
	require.NoError(t, printTickerFetches(&buf, rec, "run-1"))
	out := buf.String()
	assert.Contains(t, out, "SYMBOL")
	assert.Regexp(t, `NVDA\s+4\s+2023-01-03\s+2023-01-06\s+120ms\s+-`, out)
	assert.Regexp(t, `PLTR\s+0\s+-\s+-\s+0s\s+no data`, out)

	assert.Error(t, printTickerFetches(&buf, rec, "unknown"))
}
