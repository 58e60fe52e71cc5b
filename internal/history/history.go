// Package history records finished and in-flight runs in a small SQLite
// database so past runs can be listed and inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"stitch/internal/config"
)

// Outcome labels how a run ended.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Record is one run's ledger entry.
type Record struct {
	ID           int64
	RunID        string
	ClipCount    int
	Outcome      Outcome
	OutputPath   string
	Duration     time.Duration
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrNotFound indicates no record matches the requested run.
var ErrNotFound = errors.New("run record not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    clip_count INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    output_path TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    error_message TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new running record for runID.
func (s *Store) Create(ctx context.Context, runID string, clipCount int) (*Record, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, clip_count, outcome, output_path, duration_ms, error_message, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		runID,
		clipCount,
		OutcomeRunning,
		nil,
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	if _, err := res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByRunID(ctx, runID)
}

// Finish marks the run's terminal outcome.
func (s *Store) Finish(ctx context.Context, runID string, outcome Outcome, outputPath string, duration time.Duration, errorMessage string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET outcome = ?, output_path = ?, duration_ms = ?, error_message = ?, updated_at = ?
         WHERE run_id = ?`,
		outcome,
		nullableString(outputPath),
		duration.Milliseconds(),
		nullableString(errorMessage),
		timestamp,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

const recordColumns = "id, run_id, clip_count, outcome, output_path, duration_ms, error_message, created_at, updated_at"

// GetByRunID returns the record for runID.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM runs WHERE run_id = ?", runID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return record, nil
}

// List returns records newest-first, up to limit (0 means all).
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := "SELECT " + recordColumns + " FROM runs ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// Clear removes all run records.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		runID        string
		clipCount    int64
		outcomeStr   string
		outputPath   sql.NullString
		durationMS   sql.NullInt64
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&id,
		&runID,
		&clipCount,
		&outcomeStr,
		&outputPath,
		&durationMS,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		RunID:        runID,
		ClipCount:    int(clipCount),
		Outcome:      Outcome(outcomeStr),
		OutputPath:   outputPath.String,
		Duration:     time.Duration(durationMS.Int64) * time.Millisecond,
		ErrorMessage: errorMessage.String,
	}
	record.CreatedAt = parseTimestamp(createdRaw)
	record.UpdatedAt = parseTimestamp(updatedRaw)
	return record, nil
}

func parseTimestamp(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
