package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run is one recorded solver or probing invocation.
type Run struct {
	ID          string
	Instance    string
	Fingerprint string
	Command     string
	Result      string
	Vars        int
	Clauses     int
	Assigned    int
	Completed   bool
	Duration    time.Duration
	CreatedAt   time.Time
}

// RecordRun inserts a run record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// Other constraint violations (e.g., NOT NULL) will still return errors.
//
// A zero CreatedAt is stamped by the store clock.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	created := run.CreatedAt
	if created.IsZero() {
		created = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, instance, fingerprint, command, result, vars, clauses, assigned, completed, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Instance,
		run.Fingerprint,
		run.Command,
		run.Result,
		run.Vars,
		run.Clauses,
		run.Assigned,
		run.Completed,
		run.Duration.Milliseconds(),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// ListRuns returns recent runs, newest first. UUIDv7 run IDs are
// time-ordered, so id is a deterministic tiebreak within a timestamp.
// A negative limit returns everything.
//
// Returns an empty slice (not nil) if no runs are recorded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, instance, fingerprint, command, result, vars, clauses, assigned, completed, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// InstanceRuns returns every run recorded for a formula fingerprint in
// chronological order.
//
// Returns an empty slice (not nil) if the instance was never run.
func (s *Store) InstanceRuns(ctx context.Context, fingerprint string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, instance, fingerprint, command, result, vars, clauses, assigned, completed, duration_ms, created_at
		FROM runs
		WHERE fingerprint = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query instance runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var durationMS int64
	var createdAt string

	err := rows.Scan(
		&run.ID,
		&run.Instance,
		&run.Fingerprint,
		&run.Command,
		&run.Result,
		&run.Vars,
		&run.Clauses,
		&run.Assigned,
		&run.Completed,
		&durationMS,
		&createdAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	return run, nil
}
