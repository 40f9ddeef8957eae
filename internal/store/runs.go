package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trademax/academy-enrollment/internal/reminder"
)

// Run is a persisted reminder run.
type Run struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Total      int       `json:"total"`
	Sent       int       `json:"sent"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
	FatalError string    `json:"fatalError,omitempty"`
}

// RecordRun stores the outcome of a reminder run. It satisfies
// reminder.RunRecorder.
func (s *Store) RecordRun(ctx context.Context, res reminder.Result, runErr error) error {
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	errJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode run errors: %w", err)
	}
	var fatal sql.NullString
	if runErr != nil {
		fatal = sql.NullString{String: runErr.Error(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reminder_runs (run_id, started_at, finished_at, total_rows, sent, skipped, errors, fatal_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING
	`, res.RunID, res.StartedAt, res.FinishedAt, res.Total, res.Sent, res.Skipped, string(errJSON), fatal)
	if err != nil {
		return fmt.Errorf("insert reminder run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, total_rows, sent, skipped, errors, COALESCE(fatal_error, '')
		FROM reminder_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reminder runs: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var r Run
		var errJSON []byte
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Sent, &r.Skipped, &errJSON, &r.FatalError); err != nil {
			return nil, fmt.Errorf("scan reminder run: %w", err)
		}
		r.Errors = []string{}
		if len(errJSON) > 0 {
			if err := json.Unmarshal(errJSON, &r.Errors); err != nil {
				return nil, fmt.Errorf("decode run errors: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
