package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// RecentRuns returns up to limit runs, newest first.
// Ties on start time are ordered by run ID.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, roots, pass, checks, failed, violations
		FROM runs
		ORDER BY started_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a run with its check records in check order.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_ms, roots, pass, checks, failed, violations
		FROM runs WHERE id = ?
	`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}

	run := Run{
		ID:       sum.ID,
		Started:  sum.Started,
		Duration: sum.Duration,
		Roots:    sum.Roots,
		Pass:     sum.Pass,
		Checks:   []CheckRecord{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, provider, pass, error, violations, duration_ms
		FROM check_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c          CheckRecord
			pass       int
			violations string
			durationMS int64
		)
		if err := rows.Scan(&c.Name, &c.Provider, &pass, &c.Error, &violations, &durationMS); err != nil {
			return Run{}, fmt.Errorf("scan check: %w", err)
		}
		c.Pass = pass == 1
		c.Duration = time.Duration(durationMS) * time.Millisecond
		if c.Violations, err = unmarshalStrings(violations); err != nil {
			return Run{}, err
		}
		run.Checks = append(run.Checks, c)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate checks: %w", err)
	}
	return run, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var (
		sum        RunSummary
		started    string
		durationMS int64
		roots      string
		pass       int
	)
	if err := row.Scan(&sum.ID, &started, &durationMS, &roots, &pass, &sum.Checks, &sum.Failed, &sum.Violations); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunSummary{}, err
		}
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if sum.Started, err = parseTime(started); err != nil {
		return RunSummary{}, err
	}
	if sum.Roots, err = unmarshalStrings(roots); err != nil {
		return RunSummary{}, err
	}
	sum.Duration = time.Duration(durationMS) * time.Millisecond
	sum.Pass = pass == 1
	return sum, nil
}
