// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of tapfetch runs: which archives
// were asked, with what ADQL, and which resource URLs and files came back.
// The history is write-mostly; nothing in a run consults it.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed width so that text order of started_at is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run statuses.
const (
	StatusFound = "found"
	StatusEmpty = "empty"
)

// Resource is one URL returned by a run, with its download outcome.
type Resource struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Run is one recorded invocation.
type Run struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	Selection    string     `json:"selection"`
	DownloadMode string     `json:"download_mode"`
	Query        string     `json:"query"`
	Archives     []string   `json:"archives"`
	URLCount     int        `json:"url_count"`
	Status       string     `json:"status"`
	Resources    []Resource `json:"resources,omitempty"`
}

// Ledger is an open history database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			selection TEXT,
			download_mode TEXT,
			query TEXT,
			archives TEXT,
			url_count INTEGER,
			status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			file_path TEXT,
			error TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its resources in one transaction. An empty ID is
// replaced by a new UUID and a zero StartedAt by the current time; both are
// written back into run.
func (l *Ledger) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	archivesJSON, err := json.Marshal(run.Archives)
	if err != nil {
		return fmt.Errorf("encoding archives: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, selection, download_mode, query, archives, url_count, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Selection, run.DownloadMode,
		run.Query, string(archivesJSON), run.URLCount, run.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO resources (run_id, position, url, file_path, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Resources {
		if _, err := stmt.ExecContext(ctx, run.ID, r.Position, r.URL, r.FilePath, r.Error); err != nil {
			return fmt.Errorf("inserting resource %d: %w", r.Position, err)
		}
	}

	return tx.Commit()
}

// Runs returns up to limit runs, newest first, without their resources.
// A limit of 0 or less returns every run.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, selection, download_mode, query, archives, url_count, status
		FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r            Run
			startedAt    string
			archivesJSON string
		)
		if err := rows.Scan(&r.ID, &startedAt, &r.Selection, &r.DownloadMode, &r.Query,
			&archivesJSON, &r.URLCount, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		if err := json.Unmarshal([]byte(archivesJSON), &r.Archives); err != nil {
			return nil, fmt.Errorf("decoding archives of run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Resources returns the resources of one run in position order.
func (l *Ledger) Resources(ctx context.Context, runID string) ([]Resource, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT position, url, COALESCE(file_path, ''), COALESCE(error, '')
		 FROM resources WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var out []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.Position, &r.URL, &r.FilePath, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
