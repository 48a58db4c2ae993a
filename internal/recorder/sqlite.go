package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockScreener/internal/model"
)

// SQLiteRecorder persists screening runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
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
		`CREATE TABLE IF NOT EXISTS screening_runs (
			run_id        TEXT PRIMARY KEY,
			run_date      INTEGER NOT NULL,
			universe_size INTEGER NOT NULL,
			match_count   INTEGER NOT NULL,
			error_count   INTEGER NOT NULL,
			elapsed_ms    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_date ON screening_runs(run_date)`,

		`CREATE TABLE IF NOT EXISTS pattern_matches (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			name          TEXT,
			strategy_id   TEXT NOT NULL,
			match_date    TEXT NOT NULL,
			window_dates  TEXT,
			score         INTEGER,
			metrics       TEXT,
			tags          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_run ON pattern_matches(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_instrument ON pattern_matches(instrument_id)`,

		`CREATE TABLE IF NOT EXISTS instrument_errors (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			reason        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_run ON instrument_errors(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run row plus all matches and errors in one transaction.
func (r *SQLiteRecorder) RecordRun(result *model.ScreeningResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO screening_runs
		(run_id, run_date, universe_size, match_count, error_count, elapsed_ms)
		VALUES (?,?,?,?,?,?)`,
		result.RunID, result.RunDate.Unix(), result.UniverseSize,
		len(result.Matches), len(result.Errors), result.Elapsed.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range result.Matches {
		metrics, err := json.Marshal(m.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		tags, err := json.Marshal(m.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		dates := make([]string, 0, len(m.WindowDates))
		for _, d := range m.WindowDates {
			dates = append(dates, d.Format("2006-01-02"))
		}
		if _, err := tx.Exec(`INSERT INTO pattern_matches
			(run_id, instrument_id, name, strategy_id, match_date, window_dates, score, metrics, tags)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			result.RunID, m.InstrumentID, m.Name, m.StrategyID,
			m.MatchDate.Format("2006-01-02"), strings.Join(dates, ","),
			m.Score, string(metrics), string(tags),
		); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
	}

	for _, e := range result.Errors {
		if _, err := tx.Exec(`INSERT INTO instrument_errors
			(run_id, instrument_id, reason) VALUES (?,?,?)`,
			result.RunID, e.InstrumentID, e.Reason,
		); err != nil {
			return fmt.Errorf("insert error: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
