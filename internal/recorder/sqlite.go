package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the history command can read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			status      TEXT NOT NULL,
			stage       TEXT,
			error       TEXT,
			tickers     INTEGER,
			failed      INTEGER,
			row_count   INTEGER,
			col_count   INTEGER,
			output_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ticker_fetches (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			bars        INTEGER,
			first_date  TEXT,
			last_date   TEXT,
			duration_ms INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_run ON ticker_fetches(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, status, stage, error, tickers, failed, row_count, col_count, output_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Status, run.Stage, run.Error,
		run.Tickers, run.Failed, run.Rows, run.Columns, run.OutputPath,
	)
	return err
}

func (r *SQLiteRecorder) RecordTicker(rec *TickerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO ticker_fetches
		(run_id, symbol, bars, first_date, last_date, duration_ms, error)
		VALUES (?,?,?,?,?,?,?)`,
		rec.RunID, rec.Symbol, rec.Bars, rec.FirstDate, rec.LastDate,
		rec.Duration.Milliseconds(), rec.Error,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, started_at, finished_at, status,
		COALESCE(stage, ''), COALESCE(error, ''), tickers, failed, row_count, col_count, COALESCE(output_path, '')
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec             RunRecord
			started, finish int64
		)
		if err := rows.Scan(&rec.RunID, &started, &finish, &rec.Status, &rec.Stage, &rec.Error,
			&rec.Tickers, &rec.Failed, &rec.Rows, &rec.Columns, &rec.OutputPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.FinishedAt = time.UnixMilli(finish).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TickerFetches returns the per-ticker rows recorded for runID in insert order.
func (r *SQLiteRecorder) TickerFetches(runID string) ([]TickerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, symbol, bars, COALESCE(first_date, ''), COALESCE(last_date, ''),
		duration_ms, COALESCE(error, '') FROM ticker_fetches WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ticker fetches: %w", err)
	}
	defer rows.Close()

	var out []TickerRecord
	for rows.Next() {
		var (
			rec TickerRecord
			ms  int64
		)
		if err := rows.Scan(&rec.RunID, &rec.Symbol, &rec.Bars, &rec.FirstDate, &rec.LastDate, &ms, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan ticker fetch: %w", err)
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
