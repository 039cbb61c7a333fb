package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"MarketSeries/internal/notifier"
	"MarketSeries/internal/pipeline"
	"MarketSeries/internal/recorder"
)

// historyLimit is the number of runs listed by /history.
const historyLimit = 5

// Runner executes one full batch run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
}

// HistorySource lists recorded runs, newest first.
type HistorySource interface {
	RecentRuns(limit int) ([]recorder.RunRecord, error)
}

// Scheduler re-runs the pipeline on a cron schedule. Every run recomputes
// from scratch; a run that is still going when the next tick fires is
// skipped.
type Scheduler struct {
	Cron    *cron.Cron
	Runner  Runner
	Logger  *logrus.Logger
	Ctx     context.Context
	// History backs /history; nil when run history is disabled.
	History HistorySource

	running sync.Mutex
	mu      sync.Mutex
	last    *pipeline.RunResult
	lastErr error
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, logger *logrus.Logger) *Scheduler {
	cl := cronLogger{logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Runner: runner,
		Logger: logger,
		Ctx:    ctx,
	}
}

// Register adds the batch job under spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes a run immediately. It reports false when another run was
// already in progress.
func (s *Scheduler) RunNow() bool {
	return s.runOnce()
}

func (s *Scheduler) runTask() {
	s.runOnce()
}

func (s *Scheduler) runOnce() bool {
	if !s.running.TryLock() {
		s.Logger.Warn("run already in progress, skipping")
		return false
	}
	defer s.running.Unlock()

	if s.Ctx.Err() != nil {
		return false
	}
	s.Logger.Info("running scheduled batch")
	res, err := s.Runner.Run(s.Ctx)

	s.mu.Lock()
	s.last, s.lastErr = res, err
	s.mu.Unlock()
	return true
}

// Last returns the most recent run result and error, if any.
func (s *Scheduler) Last() (*pipeline.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch strings.ToLower(command) {
	case "/status":
		res, err := s.Last()
		if res == nil {
			return "No run since startup."
		}
		if err != nil {
			return notifier.FormatRunFailure(res, err)
		}
		return notifier.FormatRunSummary(res)
	case "/history":
		if s.History == nil {
			return "Run history is not enabled."
		}
		runs, err := s.History.RecentRuns(historyLimit)
		if err != nil {
			s.Logger.WithError(err).Warn("load run history failed")
			return "Failed to load run history."
		}
		return notifier.FormatHistory(runs)
	case "/run":
		go s.RunNow()
		return "Run started."
	case "/next":
		entries := s.Cron.Entries()
		if len(entries) == 0 {
			return "Nothing scheduled."
		}
		next := entries[0].Next
		if next.IsZero() {
			next = entries[0].Schedule.Next(time.Now())
		}
		return "Next run: " + next.Format("2006-01-02 15:04 MST")
	default:
		return "Commands:\n• /status last run summary\n• /history recent runs\n• /run start a run now\n• /next next scheduled run"
	}
}

// cronLogger routes cron's internal logging through logrus.
type cronLogger struct {
	l *logrus.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.WithFields(kvFields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
