// Package pipeline runs one batch: fetch every ticker, derive adjusted fields,
// assemble the wide table, merge earnings, fill nulls and write the CSV.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"MarketSeries/internal/calculator"
	"MarketSeries/internal/collector"
	"MarketSeries/internal/earnings"
	"MarketSeries/internal/output"
	"MarketSeries/internal/recorder"
	"MarketSeries/internal/registry"
	"MarketSeries/internal/table"
)

// Options holds the table and output policies of a run.
type Options struct {
	OnError      OnError
	EarningsPath string // empty disables the merge
	OutputPath   string
	Join         table.JoinOptions
	NullPolicy   table.NullPolicy
	Precision    int
}

// TickerOutcome is the per-ticker part of a RunResult.
type TickerOutcome struct {
	Symbol      string
	DisplayName string
	Bars        int
	First       time.Time
	Last        time.Time
	Duration    time.Duration
	Err         error
	// Summary is the last-day snapshot; nil for failed tickers.
	Summary *calculator.Summary
}

// RunResult describes a finished run, successful or not.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    []TickerOutcome
	Rows       int
	Columns    int
	OutputPath string
	// Table is the table that was written; nil when the run failed.
	Table *table.Table
}

// Failed counts tickers whose fetch failed.
func (r *RunResult) Failed() int {
	n := 0
	for _, t := range r.Tickers {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// Notifier receives the outcome of every run. err is nil on success.
type Notifier interface {
	NotifyRun(ctx context.Context, res *RunResult, err error) error
}

// Pipeline wires the stages of a batch run.
type Pipeline struct {
	Registry  *registry.Registry
	Collector *collector.Collector
	Opts      Options
	Recorder  recorder.Recorder
	Notifier  Notifier
	Logger    *logrus.Logger
}

// New creates a Pipeline with a no-op recorder and no notifier. The collector
// is switched to fail-fast when the policy is abort.
func New(reg *registry.Registry, col *collector.Collector, opts Options, logger *logrus.Logger) *Pipeline {
	if opts.OnError == "" {
		opts.OnError = OnErrorAbort
	}
	if opts.NullPolicy == "" {
		opts.NullPolicy = table.NullZero
	}
	col.FailFast = opts.OnError == OnErrorAbort
	return &Pipeline{
		Registry:  reg,
		Collector: col,
		Opts:      opts,
		Recorder:  recorder.NewNoopRecorder(),
		Logger:    logger,
	}
}

// Run executes one full batch. The previous output file is only replaced
// when every stage succeeds.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	res := &RunResult{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now(),
		OutputPath: p.Opts.OutputPath,
	}
	log := p.Logger.WithField("run_id", res.RunID)
	log.WithField("tickers", p.Registry.Len()).Info("run started")

	final, err := p.run(ctx, res, log)
	res.FinishedAt = time.Now()
	if err == nil {
		res.Table = final
		res.Rows = final.Rows()
		res.Columns = len(final.Columns)
		log.WithFields(logrus.Fields{
			"rows":     res.Rows,
			"columns":  res.Columns,
			"output":   res.OutputPath,
			"duration": res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).String(),
		}).Info("run finished")
	} else {
		log.WithField("stage", string(StageOf(err))).WithError(err).Error("run failed")
	}

	p.record(res, err, log)
	if p.Notifier != nil {
		if nerr := p.Notifier.NotifyRun(ctx, res, err); nerr != nil {
			log.WithError(nerr).Warn("notify failed")
		}
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, res *RunResult, log *logrus.Entry) (*table.Table, error) {
	// Fetch
	results := p.Collector.CollectAll(ctx, p.Registry.Specs())
	res.Tickers = make([]TickerOutcome, len(results))
	for i, r := range results {
		o := TickerOutcome{
			Symbol:      r.Spec.Symbol,
			DisplayName: r.Spec.DisplayName,
			Bars:        len(r.Bars),
			Duration:    r.Duration,
			Err:         r.Err,
		}
		if len(r.Bars) > 0 {
			o.First = r.Bars[0].Date
			o.Last = r.Bars[len(r.Bars)-1].Date
		}
		res.Tickers[i] = o
	}
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}

	ok := make([]int, 0, len(results))
	var firstErr error
	for i, r := range results {
		if r.Err == nil {
			ok = append(ok, i)
			continue
		}
		firstErr = pickCause(firstErr, r.Err)
		if p.Opts.OnError == OnErrorSkip {
			log.WithField("symbol", r.Spec.Symbol).WithError(r.Err).Warn("ticker skipped")
		}
	}
	if firstErr != nil && p.Opts.OnError == OnErrorAbort {
		return nil, &StageError{Stage: StageFetch, Err: firstErr}
	}
	if len(ok) == 0 {
		err := ErrAllTickersFailed
		if firstErr != nil {
			err = fmt.Errorf("%w: %w", ErrAllTickersFailed, firstErr)
		}
		return nil, &StageError{Stage: StageFetch, Err: err}
	}

	// Derive
	series := make([]table.Series, 0, len(ok))
	for _, i := range ok {
		r := results[i]
		if err := calculator.CheckOrder(r.Bars); err != nil {
			return nil, &StageError{Stage: StageDerive, Err: fmt.Errorf("%s: %w", r.Spec.Symbol, err)}
		}
		recs := calculator.Derive(r.Bars)
		if sum, err := calculator.Summarize(recs); err == nil {
			res.Tickers[i].Summary = sum
		}
		series = append(series, table.Series{Symbol: r.Spec.Symbol, Records: recs})
	}

	// Assemble
	wide, err := table.Assemble(series)
	if err != nil {
		return nil, &StageError{Stage: StageAssemble, Err: err}
	}
	log.WithFields(logrus.Fields{"rows": wide.Rows(), "columns": len(wide.Columns)}).Debug("assembled")

	// Earnings merge
	if p.Opts.EarningsPath != "" {
		earn, err := earnings.Load(p.Opts.EarningsPath)
		if err != nil {
			return nil, &StageError{Stage: StageEarnings, Err: err}
		}
		wide, err = table.LeftJoin(wide, earn, p.Opts.Join)
		if err != nil {
			return nil, &StageError{Stage: StageEarnings, Err: err}
		}
		log.WithField("columns", len(earn.Columns)).Debug("earnings merged")
	}

	// Fill, drop the structurally undefined first row, persist.
	filled, err := wide.FillNulls(p.Opts.NullPolicy)
	if err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}
	final := filled.DropFirst()
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}
	if err := output.WriteCSV(p.Opts.OutputPath, final, output.Options{Precision: p.Opts.Precision}); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}
	return final, nil
}

// pickCause keeps the first real failure, preferring it over cancellations
// caused by fail-fast.
func pickCause(current, next error) error {
	if current == nil {
		return next
	}
	if errors.Is(current, context.Canceled) && !errors.Is(next, context.Canceled) {
		return next
	}
	return current
}

func (p *Pipeline) record(res *RunResult, runErr error, log *logrus.Entry) {
	run := &recorder.RunRecord{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Status:     recorder.StatusOK,
		Tickers:    len(res.Tickers),
		Failed:     res.Failed(),
		Rows:       res.Rows,
		Columns:    res.Columns,
		OutputPath: res.OutputPath,
	}
	if runErr != nil {
		run.Status = recorder.StatusFailed
		run.Stage = string(StageOf(runErr))
		run.Error = runErr.Error()
	}
	if err := p.Recorder.RecordRun(run); err != nil {
		log.WithError(err).Warn("record run failed")
	}
	for _, t := range res.Tickers {
		rec := &recorder.TickerRecord{
			RunID:    res.RunID,
			Symbol:   t.Symbol,
			Bars:     t.Bars,
			Duration: t.Duration,
		}
		if !t.First.IsZero() {
			rec.FirstDate = t.First.Format(output.DateLayout)
			rec.LastDate = t.Last.Format(output.DateLayout)
		}
		if t.Err != nil {
			rec.Error = t.Err.Error()
		}
		if err := p.Recorder.RecordTicker(rec); err != nil {
			log.WithField("symbol", t.Symbol).WithError(err).Warn("record ticker failed")
		}
	}
}
