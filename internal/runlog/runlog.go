// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog records stage runs in a SQLite database so past
// generations stay inspectable after their output files move on.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "runs.db"

// Record is one stage run.
type Record struct {
	ID          string
	Stage       string
	Depth       int
	Fingerprint string
	OutputPath  string
	Words       int
	Duration    time.Duration
	Degraded    bool
	CreatedAt   time.Time
}

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the run history database at dir/runs.db.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating runlog directory: %w", err)
	}
	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening run history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating run history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			stage TEXT NOT NULL,
			depth INTEGER NOT NULL,
			fingerprint TEXT,
			output_path TEXT,
			words INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			degraded INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one run. A zero ID and CreatedAt are filled in; the
// stored record is returned.
func (s *Store) Record(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	degraded := 0
	if r.Degraded {
		degraded = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, stage, depth, fingerprint, output_path, words, duration_ms, degraded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Stage, r.Depth, r.Fingerprint, r.OutputPath, r.Words,
		r.Duration.Milliseconds(), degraded, r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Record{}, fmt.Errorf("recording run: %w", err)
	}
	return r, nil
}

// List returns the most recent runs, newest first. A stage filter of ""
// lists every stage; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, stageFilter string, limit int) ([]Record, error) {
	query := `SELECT id, stage, depth, fingerprint, output_path, words, duration_ms, degraded, created_at
		 FROM runs`
	var args []any
	if stageFilter != "" {
		query += ` WHERE stage = ?`
		args = append(args, stageFilter)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var durationMS int64
		var degraded int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Stage, &r.Depth, &r.Fingerprint, &r.OutputPath,
			&r.Words, &durationMS, &degraded, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Degraded = degraded != 0
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = ts
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
