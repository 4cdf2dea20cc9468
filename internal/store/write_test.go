package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/ir"
)

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, s, "run-1", 42)
	run.Seed = 99
	require.NoError(t, s.WriteRun(ctx, run), "duplicate header is ignored")

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed, "first write wins")
}

func TestWriteEvaluation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", 7)

	tests := []struct {
		name string
		ev   Evaluation
	}{
		{"int", Evaluation{Seq: 1, Path: "event:Ambush", Property: "Chance", Kind: ir.KindInt, Value: ir.Int(14)}},
		{"bool", Evaluation{Seq: 2, Path: "event:Ambush/Subject", Property: "Condition", Kind: ir.KindBool, Value: ir.Bool(true)}},
		{"text", Evaluation{Seq: 3, Path: "event:Ambush", Property: "Description", Kind: ir.KindString, Value: ir.String("Aldric <flees> & hides")}},
		{"keyed", Evaluation{Seq: 4, Path: "site:Keep", Property: "Attributes", Key: "Walls", Kind: ir.KindInt, Value: ir.Int(-3)}},
		{"error", Evaluation{Seq: 5, Path: "event:Ambush", Property: "Chance", Kind: ir.KindInt, ErrorCode: "DIVISION_BY_ZERO", Error: "division by zero"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tt.ev
			ev.RunID = "run-1"
			ev.Bindings = subjectBindings()
			ev.RNGPosition = ev.Seq * 2
			require.NoError(t, s.WriteEvaluation(ctx, ev))

			evals, err := s.ReadEvaluations(ctx, "run-1")
			require.NoError(t, err)
			got := evals[len(evals)-1]

			assert.Equal(t, ev.Seq, got.Seq)
			assert.Equal(t, ev.Path, got.Path)
			assert.Equal(t, ev.Property, got.Property)
			assert.Equal(t, ev.Key, got.Key)
			assert.Equal(t, ev.Kind, got.Kind)
			assert.Equal(t, ev.Value, got.Value)
			assert.Equal(t, ev.ErrorCode, got.ErrorCode)
			assert.Equal(t, ev.Error, got.Error)
			assert.Equal(t, ev.RNGPosition, got.RNGPosition)
			assert.Equal(t, ir.MustBindingsHash(ev.Bindings), got.BindingsHash)

			subject, ok := got.Bindings["Subject"].(*ir.Thing)
			require.True(t, ok)
			assert.Equal(t, "Aldric", subject.Name)
			health, _ := subject.Attribute("Health")
			assert.Equal(t, int64(5), health)
		})
	}
}

func TestWriteEvaluation_ErrorStoresNullValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", 7)

	require.NoError(t, s.WriteEvaluation(ctx, Evaluation{
		RunID: "run-1", Seq: 1, Path: "p", Property: "Chance",
		Kind: ir.KindInt, ErrorCode: "UNBOUND_VARIABLE",
	}))

	var value sql.NullString
	require.NoError(t, s.DB().QueryRow("SELECT value FROM evaluations WHERE run_id = 'run-1'").Scan(&value))
	assert.False(t, value.Valid)
}

func TestWriteEvaluation_DuplicateSeqIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", 7)

	first := Evaluation{RunID: "run-1", Seq: 1, Path: "p", Property: "Chance", Kind: ir.KindInt, Value: ir.Int(1)}
	second := first
	second.Value = ir.Int(2)
	require.NoError(t, s.WriteEvaluation(ctx, first))
	require.NoError(t, s.WriteEvaluation(ctx, second))

	evals, err := s.ReadEvaluations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, ir.Int(1), evals[0].Value)
}

func TestWriteEvaluation_RequiresRun(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteEvaluation(context.Background(), Evaluation{RunID: "missing", Seq: 1, Path: "p", Property: "q"})
	assert.Error(t, err, "foreign key enforcement")
}

func TestWriteEvaluation_CanonicalBindings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", 7)

	require.NoError(t, s.WriteEvaluation(ctx, Evaluation{
		RunID: "run-1", Seq: 1, Path: "p", Property: "q",
		Bindings: ir.Bindings{
			"Subject": ir.NewThing("Aldric", map[string]int64{"Fear": 23, "Health": 5}),
			"Count":   ir.Int(3),
		},
	}))

	var raw string
	require.NoError(t, s.DB().QueryRow("SELECT bindings FROM evaluations").Scan(&raw))
	assert.Equal(t, `{"Count":3,"Subject":{"attributes":{"Fear":23,"Health":5},"name":"Aldric"}}`, raw)
}
