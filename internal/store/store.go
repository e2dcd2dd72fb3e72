// Package store persists reconciliation runs and their ordered results in
// a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/driverec/reconcile-api/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	total      INTEGER NOT NULL,
	found      INTEGER NOT NULL,
	not_found  INTEGER NOT NULL,
	errors     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_results (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	seq            INTEGER NOT NULL,
	company        TEXT NOT NULL,
	input_filename TEXT NOT NULL,
	status         TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	file_name      TEXT NOT NULL DEFAULT '',
	file_id        TEXT NOT NULL DEFAULT '',
	web_view_link  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);
`

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a run header and its results. Result order is recorded
// through the seq column so reads return it unchanged.
func (s *Store) SaveRun(ctx context.Context, run models.RunSummary, results []models.ResultRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, total, found, not_found, errors) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Unix(), run.Total, run.Found, run.NotFound, run.Errors,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results (run_id, seq, company, input_filename, status, error, file_name, file_id, web_view_link)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Company, r.InputFilename,
			string(r.Status), r.Error, r.FileName, r.FileID, r.WebViewLink); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun returns one run and its results in original batch order.
func (s *Store) GetRun(ctx context.Context, id string) (models.RunSummary, []models.ResultRecord, error) {
	var run models.RunSummary
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, total, found, not_found, errors FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &createdAt, &run.Total, &run.Found, &run.NotFound, &run.Errors)
	if err == sql.ErrNoRows {
		return run, nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return run, nil, fmt.Errorf("failed to read run: %w", err)
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT company, input_filename, status, error, file_name, file_id, web_view_link
		 FROM run_results WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return run, nil, fmt.Errorf("failed to read run results: %w", err)
	}
	defer rows.Close()

	var results []models.ResultRecord
	for rows.Next() {
		var r models.ResultRecord
		var status string
		if err := rows.Scan(&r.Company, &r.InputFilename, &status, &r.Error,
			&r.FileName, &r.FileID, &r.WebViewLink); err != nil {
			return run, nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		r.Status = models.Status(status)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return run, nil, fmt.Errorf("failed to iterate run results: %w", err)
	}
	return run, results, nil
}

// ListRuns returns up to limit run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, total, found, not_found, errors
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var run models.RunSummary
		var createdAt int64
		if err := rows.Scan(&run.ID, &createdAt, &run.Total, &run.Found, &run.NotFound, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Health returns run store health status
func (s *Store) Health() map[string]interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return map[string]interface{}{"status": "unhealthy", "error": err.Error()}
	}
	return map[string]interface{}{"status": "healthy"}
}
