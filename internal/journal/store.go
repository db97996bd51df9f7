package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"hearth/internal/config"
)

// Status describes the lifecycle of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded command execution.
type Run struct {
	ID        string
	Command   string
	Detail    string
	Status    Status
	StartedAt time.Time
	EndedAt   time.Time
	Error     string
}

// Finished reports whether the run has completed.
func (r Run) Finished() bool {
	return r.Status != StatusRunning
}

// Duration returns the elapsed run time, or zero while still running.
func (r Run) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Store records command runs in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database location.
func (s *Store) Path() string {
	return s.path
}

// Begin records the start of a command run and returns its journal entry.
func (s *Store) Begin(ctx context.Context, command, detail string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Command:   command,
		Detail:    detail,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, command, detail, status, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.Command,
		run.Detail,
		string(run.Status),
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish closes out a run, recording success or the failure message. The
// detail on the run is written back as well, so callers may replace the
// detail set at Begin with an outcome summary.
func (s *Store) Finish(ctx context.Context, run *Run, runErr error) error {
	if run == nil {
		return errors.New("finish: nil run")
	}

	run.EndedAt = time.Now().UTC()
	run.Status = StatusSucceeded
	run.Error = ""
	if runErr != nil {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	}

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET detail = ?, status = ?, ended_at = ?, error = ? WHERE id = ?`,
		run.Detail,
		string(run.Status),
		run.EndedAt.Format(time.RFC3339Nano),
		nullableString(run.Error),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, command, detail, status, started_at, ended_at, error
         FROM runs ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			status  string
			started string
			ended   sql.NullString
			message sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Command, &run.Detail, &status, &started, &ended, &message); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = Status(status)
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if ended.Valid {
			run.EndedAt, err = time.Parse(time.RFC3339Nano, ended.String)
			if err != nil {
				return nil, fmt.Errorf("parse ended_at: %w", err)
			}
		}
		if message.Valid {
			run.Error = message.String
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
