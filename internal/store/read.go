package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID has no header row.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the header of one run.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed, label, engine_version, language_version
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Seed, &run.Label, &run.EngineVersion, &run.LanguageVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run header ordered by ID. UUIDv7 IDs sort by
// creation time.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, label, engine_version, language_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Seed, &run.Label, &run.EngineVersion, &run.LanguageVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvaluations returns all evaluations of a run ordered by seq.
// Returns an empty slice (not nil) if the run recorded nothing.
func (s *Store) ReadEvaluations(ctx context.Context, runID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, path, property, prop_key, bindings, bindings_hash,
		       kind, value, error_code, error, rng_position
		FROM evaluations
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

// ReadEvaluationsByPath returns every recorded evaluation of one property
// across all runs, ordered by run then seq.
func (s *Store) ReadEvaluationsByPath(ctx context.Context, path, property string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, path, property, prop_key, bindings, bindings_hash,
		       kind, value, error_code, error, rng_position
		FROM evaluations
		WHERE path = ? AND property = ?
		ORDER BY run_id COLLATE BINARY ASC, seq ASC
	`, path, property)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (Evaluation, error) {
	var (
		ev           Evaluation
		bindingsJSON string
		kind         string
		value        sql.NullString
	)
	err := row.Scan(&ev.RunID, &ev.Seq, &ev.Path, &ev.Property, &ev.Key, &bindingsJSON, &ev.BindingsHash,
		&kind, &value, &ev.ErrorCode, &ev.Error, &ev.RNGPosition)
	if err != nil {
		return Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}

	if ev.Bindings, err = unmarshalBindings(bindingsJSON); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s/%d: %w", ev.RunID, ev.Seq, err)
	}
	if ev.Kind, ev.Value, err = unmarshalValue(kind, value); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s/%d: %w", ev.RunID, ev.Seq, err)
	}
	return ev, nil
}
