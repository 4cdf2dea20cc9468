package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/store"
)

// ReplayResult reports a replay of a stored run.
type ReplayResult struct {
	RunID       string
	Seed        int64
	Evaluations int

	// Divergence is the first difference, nil when the replay matched.
	Divergence *Divergence
}

// Matched reports whether the replay reproduced the stored run exactly.
func (r *ReplayResult) Matched() bool { return r.Divergence == nil }

// Replay re-executes a stored run from its seed against the runner's
// catalog and compares each evaluation with the recorded one: error code,
// canonical value, and RNG position after the step. Nothing is written.
//
// A run recorded under a different language version is still replayed; a
// divergence then usually means the semantics changed, not the pack.
func (r *Runner) Replay(ctx context.Context, runID string) (*ReplayResult, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	log, err := r.store.LoadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if log.Run.LanguageVersion != ir.LanguageVersion {
		r.logger.Warn("replaying run recorded under another language version",
			"run", runID, "recorded", log.Run.LanguageVersion, "current", ir.LanguageVersion)
	}

	result := &ReplayResult{RunID: runID, Seed: log.Run.Seed, Evaluations: len(log.Evaluations)}
	rng := NewRNG(log.Run.Seed)
	var clock *Clock
	if len(log.Evaluations) > 0 {
		clock = NewClockAt(log.Evaluations[0].Seq - 1)
	}

	for _, rec := range log.Evaluations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay %s: %w", runID, err)
		}

		ev := r.evaluate(rng, Step{Path: rec.Path, Property: rec.Property, Key: rec.Key, Bindings: rec.Bindings})
		ev.Seq = clock.Next()
		if ev.Seq != rec.Seq {
			result.Divergence = diverged(rec, "steps", strconv.FormatInt(rec.Seq, 10), strconv.FormatInt(ev.Seq, 10))
			break
		}
		if d := compareEvaluation(rec, ev); d != nil {
			result.Divergence = d
			break
		}
	}

	if result.Divergence != nil {
		r.logger.Info("replay diverged", "run", runID, "seq", result.Divergence.Seq,
			"field", result.Divergence.Field)
	} else {
		r.logger.Info("replay matched", "run", runID, "evaluations", result.Evaluations)
	}
	return result, nil
}

func compareEvaluation(rec store.Evaluation, ev Evaluation) *Divergence {
	if rec.ErrorCode != ev.Code {
		return diverged(rec, "error_code", quoted(rec.ErrorCode), quoted(ev.Code))
	}
	recorded, replayed := canonical(rec.Value), canonical(ev.Value)
	if recorded != replayed {
		return diverged(rec, "value", recorded, replayed)
	}
	if rec.RNGPosition != ev.RNGPosition {
		return diverged(rec, "rng_position",
			strconv.FormatInt(rec.RNGPosition, 10), strconv.FormatInt(ev.RNGPosition, 10))
	}
	return nil
}

func diverged(rec store.Evaluation, field, recorded, replayed string) *Divergence {
	return &Divergence{
		Seq:      rec.Seq,
		Path:     rec.Path,
		Property: rec.Property,
		Key:      rec.Key,
		Field:    field,
		Recorded: recorded,
		Replayed: replayed,
	}
}

// canonical renders v as canonical JSON, or "none" for a missing value.
func canonical(v ir.Value) string {
	if v == nil {
		return "none"
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

func quoted(code string) string {
	if code == "" {
		return "none"
	}
	return code
}
