package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// DefaultHistoryLimit caps ListRuns when no positive limit is given.
const DefaultHistoryLimit = 20

// SQLiteRecorder persists backtest runs to a SQLite database.
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

	// WAL lets the HTTP API read while the pipeline writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			strategy          TEXT,
			short_window      INTEGER,
			long_window       INTEGER,
			initial_capital   REAL,
			bars              INTEGER,
			start_date        INTEGER,
			end_date          INTEGER,
			total_return      REAL,
			annual_return     REAL,
			annual_volatility REAL,
			sharpe_ratio      REAL,
			max_drawdown      REAL,
			final_value       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON backtest_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signal_events (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES backtest_runs(id),
			date     INTEGER NOT NULL,
			signal   REAL,
			position REAL,
			close    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_run ON signal_events(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a backtest result and its crossovers in one transaction
// and returns the generated run id.
func (r *SQLiteRecorder) RecordRun(res *model.Results, crossovers []model.Crossover) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO backtest_runs
		(id, timestamp, symbol, strategy, short_window, long_window, initial_capital, bars,
		 start_date, end_date, total_return, annual_return, annual_volatility,
		 sharpe_ratio, max_drawdown, final_value)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, time.Now().UnixNano(), strings.ToUpper(res.Symbol), res.Strategy,
		res.ShortWindow, res.LongWindow, res.InitialCapital, res.Bars,
		res.StartDate.Unix(), res.EndDate.Unix(),
		res.TotalReturn, res.AnnualReturn, res.AnnualVolatility,
		res.SharpeRatio, res.MaxDrawdown, res.FinalPortfolioValue,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, c := range crossovers {
		if _, err := tx.Exec(`INSERT INTO signal_events (run_id, date, signal, position, close) VALUES (?,?,?,?,?)`,
			id, c.Date.Unix(), c.Signal, c.Position, c.Close); err != nil {
			return "", fmt.Errorf("insert signal event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

const runColumns = `id, timestamp, symbol, strategy, short_window, long_window, initial_capital, bars,
	start_date, end_date, total_return, annual_return, annual_volatility,
	sharpe_ratio, max_drawdown, final_value`

// LatestRun returns the most recent run for symbol with its crossovers.
func (r *SQLiteRecorder) LatestRun(symbol string) (*Run, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+` FROM backtest_runs
		WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT 1`, strings.ToUpper(symbol))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoRuns)
	}
	if err != nil {
		return nil, err
	}
	if run.Crossovers, err = r.crossovers(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs for symbol, newest first, without crossovers.
func (r *SQLiteRecorder) ListRuns(symbol string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := r.db.Query(`SELECT `+runColumns+` FROM backtest_runs
		WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) crossovers(runID string) ([]model.Crossover, error) {
	rows, err := r.db.Query(`SELECT date, signal, position, close FROM signal_events
		WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, fmt.Errorf("query signal events: %w", err)
	}
	defer rows.Close()

	var out []model.Crossover
	for rows.Next() {
		var c model.Crossover
		var date int64
		if err := rows.Scan(&date, &c.Signal, &c.Position, &c.Close); err != nil {
			return nil, fmt.Errorf("scan signal event: %w", err)
		}
		c.Date = time.Unix(date, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var ts, start, end int64
	err := s.Scan(&run.ID, &ts, &run.Symbol, &run.Strategy, &run.ShortWindow, &run.LongWindow,
		&run.InitialCapital, &run.Bars, &start, &end,
		&run.TotalReturn, &run.AnnualReturn, &run.AnnualVolatility,
		&run.SharpeRatio, &run.MaxDrawdown, &run.FinalPortfolioValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.RecordedAt = time.Unix(0, ts).UTC()
	run.StartDate = time.Unix(start, 0).UTC()
	run.EndDate = time.Unix(end, 0).UTC()
	return &run, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
