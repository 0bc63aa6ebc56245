package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
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
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the API read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			kind        TEXT NOT NULL,
			provider    TEXT,
			date_range  TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			tickers     INTEGER,
			skipped     INTEGER,
			succeeded   INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    INTEGER NOT NULL REFERENCES runs(id),
			symbol    TEXT NOT NULL,
			type      TEXT NOT NULL,
			day       TEXT,
			adj_close REAL,
			rsi       REAL,
			upper     REAL,
			lower     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// RecordRun stores the run and its signals in one transaction and sets run.ID.
func (r *SQLiteRecorder) RecordRun(run *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs
		(kind, provider, date_range, started_at, finished_at, tickers, skipped, succeeded, failed)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.Kind, run.Provider, run.Window, run.Started.Unix(), run.Finished.Unix(),
		run.Tickers, run.Skipped, run.Succeeded, run.Failed,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, s := range run.Signals {
		_, err := tx.Exec(`INSERT INTO signals
			(run_id, symbol, type, day, adj_close, rsi, upper, lower)
			VALUES (?,?,?,?,?,?,?,?)`,
			id, s.Symbol, s.Type, s.Day.Format("2006-01-02"), s.AdjClose, s.RSI, s.Upper, s.Lower,
		)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = id
	return nil
}

// RecentRuns returns the latest runs, newest first, without their signals.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, kind, provider, date_range, started_at, finished_at,
		tickers, skipped, succeeded, failed FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var started, finished int64
		if err := rows.Scan(&s.ID, &s.Kind, &s.Provider, &s.Window, &started, &finished,
			&s.Tickers, &s.Skipped, &s.Succeeded, &s.Failed); err != nil {
			return nil, err
		}
		s.Started = time.Unix(started, 0).UTC()
		s.Finished = time.Unix(finished, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
