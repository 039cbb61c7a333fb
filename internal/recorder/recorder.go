package recorder

import "time"

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunRecord summarizes one pipeline run.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Stage      string // failing stage, empty on success
	Error      string
	Tickers    int
	Failed     int
	Rows       int
	Columns    int
	OutputPath string
}

// TickerRecord holds the fetch outcome of one ticker within a run.
type TickerRecord struct {
	RunID     string
	Symbol    string
	Bars      int
	FirstDate string
	LastDate  string
	Duration  time.Duration
	Error     string
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordTicker(rec *TickerRecord) error
	Close() error
}
