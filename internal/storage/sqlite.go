package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/dirdiff/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		reference_dir TEXT NOT NULL,
		source_dir TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		source_files INTEGER NOT NULL DEFAULT 0,
		reference_files INTEGER NOT NULL DEFAULT 0,
		unique_files INTEGER NOT NULL DEFAULT 0,
		copied INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_entries (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		source_path TEXT NOT NULL,
		dest_path TEXT NOT NULL,
		digest TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		bytes INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_entries_digest ON run_entries(digest);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateRun inserts run. An empty ID is replaced with a new UUID; a zero StartedAt with now.
func (s *SQLiteStorage) CreateRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, reference_dir, source_dir, output_dir, algorithm, dry_run, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ReferenceDir, run.SourceDir, run.OutputDir, run.Algorithm, run.DryRun, run.StartedAt,
	)
	return err
}

// FinishRun stores the counters and finish time of run.
func (s *SQLiteStorage) FinishRun(ctx context.Context, run *models.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, source_files = ?, reference_files = ?, unique_files = ?, copied = ?, failed = ?
		 WHERE id = ?`,
		run.FinishedAt, run.SourceFiles, run.ReferenceFiles, run.Unique, run.Copied, run.Failed, run.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

const runColumns = `id, reference_dir, source_dir, output_dir, algorithm, dry_run, started_at, finished_at,
	source_files, reference_files, unique_files, copied, failed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.ReferenceDir, &run.SourceDir, &run.OutputDir, &run.Algorithm, &run.DryRun,
		&run.StartedAt, &finished, &run.SourceFiles, &run.ReferenceFiles, &run.Unique, &run.Copied, &run.Failed); err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}

// GetRun returns a run by ID, for inspecting the ledger.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// RecordResults appends results to runID in one transaction, keeping their order.
func (s *SQLiteStorage) RecordResults(ctx context.Context, runID string, results []*models.CopyResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM run_entries WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_entries (run_id, seq, source_path, dest_path, digest, status, error, bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, next+i, r.Source, r.Destination, r.Digest, string(r.Status), r.Error, r.Bytes); err != nil {
			return fmt.Errorf("failed to record %s: %w", r.Source, err)
		}
	}
	return tx.Commit()
}

// GetResults returns the results recorded for runID in insertion order.
func (s *SQLiteStorage) GetResults(ctx context.Context, runID string) ([]*models.CopyResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, dest_path, digest, status, COALESCE(error, ''), bytes
		 FROM run_entries WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.CopyResult
	for rows.Next() {
		var r models.CopyResult
		var status string
		if err := rows.Scan(&r.Source, &r.Destination, &r.Digest, &status, &r.Error, &r.Bytes); err != nil {
			return nil, err
		}
		r.Status = models.CopyStatus(status)
		results = append(results, &r)
	}
	return results, rows.Err()
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
