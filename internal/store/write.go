package store

import (
	"context"
	"fmt"
)

// RecordRun writes a run and its check records in one transaction and
// returns the generated run ID. A run ID already set on run is ignored.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	id := s.newID()

	roots, err := marshalStrings(run.Roots)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	failed, violations := 0, 0
	for _, c := range run.Checks {
		if !c.Pass {
			failed++
		}
		violations += len(c.Violations)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, duration_ms, roots, pass, checks, failed, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		formatTime(run.Started),
		run.Duration.Milliseconds(),
		roots,
		boolInt(run.Pass),
		len(run.Checks),
		failed,
		violations,
	)
	if err != nil {
		return "", fmt.Errorf("record run: insert run: %w", err)
	}

	for i, c := range run.Checks {
		vs, err := marshalStrings(c.Violations)
		if err != nil {
			return "", fmt.Errorf("record run: check %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO check_results
			(run_id, seq, name, provider, pass, error, violations, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id,
			i,
			c.Name,
			c.Provider,
			boolInt(c.Pass),
			c.Error,
			vs,
			c.Duration.Milliseconds(),
		)
		if err != nil {
			return "", fmt.Errorf("record run: insert check %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return id, nil
}
