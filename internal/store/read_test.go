package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/ir"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	createTestRun(t, s, "0192-b", 2)
	createTestRun(t, s, "0192-a", 1)
	createTestRun(t, s, "0192-c", 3)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "0192-a", runs[0].ID)
	assert.Equal(t, "0192-b", runs[1].ID)
	assert.Equal(t, "0192-c", runs[2].ID)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestReadEvaluations_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", 1)

	for _, seq := range []int64{3, 1, 2} {
		require.NoError(t, s.WriteEvaluation(ctx, Evaluation{
			RunID: "run-1", Seq: seq, Path: fmt.Sprintf("p%d", seq), Property: "Chance",
			Kind: ir.KindInt, Value: ir.Int(seq),
		}))
	}

	evals, err := s.ReadEvaluations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, evals, 3)
	for i, ev := range evals {
		assert.Equal(t, int64(i+1), ev.Seq)
	}

	none, err := s.ReadEvaluations(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReadEvaluationsByPath(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-a", 1)
	createTestRun(t, s, "run-b", 2)

	write := func(run string, seq int64, path, prop string) {
		require.NoError(t, s.WriteEvaluation(ctx, Evaluation{
			RunID: run, Seq: seq, Path: path, Property: prop, Kind: ir.KindInt, Value: ir.Int(seq),
		}))
	}
	write("run-b", 1, "event:Ambush", "Chance")
	write("run-a", 2, "event:Ambush", "Chance")
	write("run-a", 1, "event:Ambush", "Description")
	write("run-a", 3, "event:Ambush/Subject", "Chance")

	evals, err := s.ReadEvaluationsByPath(ctx, "event:Ambush", "Chance")
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, "run-a", evals[0].RunID)
	assert.Equal(t, "run-b", evals[1].RunID)
}
