package store

import (
	"context"
	"fmt"
)

// RunLog is everything recorded for one run, in replay order.
type RunLog struct {
	Run         Run
	Evaluations []Evaluation
	LastSeq     int64
	Failures    int // evaluations that recorded an error code
}

// LoadRun reads a run header and its evaluations for replay.
func (s *Store) LoadRun(ctx context.Context, id string) (RunLog, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return RunLog{}, fmt.Errorf("load run: %w", err)
	}

	evals, err := s.ReadEvaluations(ctx, id)
	if err != nil {
		return RunLog{}, fmt.Errorf("load run: %w", err)
	}

	log := RunLog{Run: run, Evaluations: evals}
	for _, ev := range evals {
		if ev.Seq > log.LastSeq {
			log.LastSeq = ev.Seq
		}
		if ev.ErrorCode != "" {
			log.Failures++
		}
	}
	return log, nil
}
