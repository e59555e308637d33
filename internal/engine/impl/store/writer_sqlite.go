package store

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/factory"
	"DumpSpectra/internal/model"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	mode TEXT NOT NULL,
	generated TEXT NOT NULL,
	frames INTEGER NOT NULL,
	malformed INTEGER NOT NULL,
	mean REAL,
	suspects INTEGER
);
CREATE TABLE IF NOT EXISTS counters (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	category TEXT NOT NULL,
	key TEXT NOT NULL,
	count INTEGER NOT NULL,
	position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_counters_run ON counters(run_id, category);
`

func init() {
	factory.RegisterWriter("sqlite", func(cfg *config.Config) (model.Writer, error) {
		path := cfg.SQLite.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.OutputDir, path)
		}
		return NewSQLiteWriter(path)
	})
}

// SQLiteWriter appends every run and its counters to a local SQLite database.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens or creates the database at path.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteWriter{db: db}, nil
}

func (w *SQLiteWriter) Name() string {
	return "sqlite"
}

// Write inserts the run and its counters in one transaction.
func (w *SQLiteWriter) Write(result *model.Result) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var mean sql.NullFloat64
	var suspects sql.NullInt64
	if result.Anomalies != nil {
		mean = sql.NullFloat64{Float64: result.Anomalies.Mean, Valid: true}
		suspects = sql.NullInt64{Int64: int64(len(result.Anomalies.Suspects)), Valid: true}
	}

	res, err := tx.Exec(`
		INSERT INTO runs (source, mode, generated, frames, malformed, mean, suspects)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.Source, result.Mode, result.Generated.UTC().Format(time.RFC3339),
		result.Counters.Frames, result.Counters.MalformedTimestamps, mean, suspects)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO counters (run_id, category, key, count, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare counter insert: %w", err)
	}
	defer stmt.Close()

	rows := CounterRows(result.Counters)
	for _, r := range rows {
		if _, err := stmt.Exec(runID, r.Category, r.Key, r.Count, r.Position); err != nil {
			return fmt.Errorf("failed to insert counter %s/%s: %w", r.Category, r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	log.Infof("Stored run %d with %d counter rows in SQLite", runID, len(rows))
	return nil
}

// LatestRunID returns the id of the most recent run, or 0 when the database is empty.
func (w *SQLiteWriter) LatestRunID() (int64, error) {
	var id sql.NullInt64
	if err := w.db.QueryRow(`SELECT MAX(id) FROM runs`).Scan(&id); err != nil {
		return 0, err
	}
	return id.Int64, nil
}

// QueryCounters returns the entries of one category of a run in first-seen order.
func (w *SQLiteWriter) QueryCounters(runID int64, category string) ([]model.Entry, error) {
	rows, err := w.db.Query(`
		SELECT key, count FROM counters
		WHERE run_id = ? AND category = ?
		ORDER BY position
	`, runID, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.Key, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
