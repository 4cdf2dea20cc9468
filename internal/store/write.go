package store

import (
	"context"
	"fmt"

	"github.com/roach88/legends/internal/ir"
)

// WriteRun inserts a run header. Uses ON CONFLICT(id) DO NOTHING so a
// resumed run can write its header again.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, label, engine_version, language_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seed,
		run.Label,
		run.EngineVersion,
		run.LanguageVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvaluation appends one evaluation record. The run must exist
// (foreign key). A second write for the same (run, seq) is ignored, which
// keeps a re-executed step idempotent.
//
// BindingsHash is computed here when the caller left it empty.
func (s *Store) WriteEvaluation(ctx context.Context, ev Evaluation) error {
	bindingsJSON, err := marshalBindings(ev.Bindings)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	hash := ev.BindingsHash
	if hash == "" {
		if hash, err = ir.BindingsHash(ev.Bindings); err != nil {
			return fmt.Errorf("write evaluation: %w", err)
		}
	}
	value, err := marshalValue(ev.Value)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	kind := ""
	if ev.Kind != ir.KindInvalid {
		kind = ev.Kind.String()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
		(run_id, seq, path, property, prop_key, bindings, bindings_hash, kind, value, error_code, error, rng_position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		ev.RunID,
		ev.Seq,
		ev.Path,
		ev.Property,
		ev.Key,
		bindingsJSON,
		hash,
		kind,
		value,
		ev.ErrorCode,
		ev.Error,
		ev.RNGPosition,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	return nil
}
