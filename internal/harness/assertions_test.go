package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/ir"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Path: "event:Harvest", Property: "Chance", Value: ir.Int(31), RNGPosition: 1},
		{Seq: 2, Path: "site:Market", Property: "Attributes", Key: "Guards", Value: ir.Int(1), RNGPosition: 1},
		{Seq: 3, Path: "event:Harvest", Property: "Chance", ErrorCode: "UNBOUND_VARIABLE", RNGPosition: 1},
		{Seq: 4, Path: "site:Market", Property: "Attributes", Key: "Stalls", Value: ir.Int(9), RNGPosition: 1},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Path: "site:Market", Key: "Stalls"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Path: "site:Market", Key: "Stalls", Value: 9}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Path: "event:Harvest", Code: "UNBOUND_VARIABLE"}))

	err := assertTraceContains(trace, Assertion{Path: "site:Market", Key: "Stalls", Value: 10})
	require.Error(t, err)
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, AssertTraceContains, aerr.Type)
	assert.Len(t, aerr.Trace, 4)

	assert.Error(t, assertTraceContains(trace, Assertion{Path: "site:Keep"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Targets: []string{
		"event:Harvest.Chance",
		"site:Market.Attributes[Guards]",
		"site:Market.Attributes[Stalls]",
	}}))

	err := assertTraceOrder(trace, Assertion{Targets: []string{
		"site:Market.Attributes[Stalls]",
		"site:Market.Attributes[Guards]",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")

	err = assertTraceOrder(trace, Assertion{Targets: []string{"site:Keep.Title"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing target: site:Keep.Title")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Count: 4}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Path: "event:Harvest", Property: "Chance", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Code: "UNBOUND_VARIABLE", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Path: "site:Keep", Count: 0}))

	err := assertTraceCount(trace, Assertion{Path: "site:Market", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 occurrences of path=site:Market")
	assert.Contains(t, err.Error(), "Actual: 2 occurrences")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Count: 4},
		{Type: AssertTraceCount, Count: 5},
		{Type: AssertFinalState, Table: "runs", Expect: map[string]any{"seed": 1}},
		{Type: "trace_absent"},
	}, nil)

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "Assertion failed: trace_count")
	assert.Equal(t, "assertion[2]: final_state requires database context", errs[1])
	assert.Equal(t, `assertion[3]: unknown assertion type "trace_absent"`, errs[2])
}

func TestAssertFinalState_RejectsTable(t *testing.T) {
	err := assertFinalState(t.Context(), nil, Assertion{Table: "sqlite_master", Expect: map[string]any{"name": "runs"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid table name "sqlite_master"`)
}

func TestBuildWhereClause(t *testing.T) {
	sql, args, err := buildWhereClause(map[string]any{"seq": 4, "run_id": "village-day"})
	require.NoError(t, err)
	assert.Equal(t, "run_id = ? AND seq = ?", sql)
	assert.Equal(t, []any{"village-day", 4}, args)

	sql, args, err = buildWhereClause(nil)
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Nil(t, args)

	_, _, err = buildWhereClause(map[string]any{"seq; DROP TABLE runs": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column name")
}

func TestFormatWhereClause(t *testing.T) {
	assert.Equal(t, "(no conditions)", formatWhereClause(nil))
	assert.Equal(t, "run_id=r1 AND seq=2", formatWhereClause(map[string]any{"seq": 2, "run_id": "r1"}))
}

func TestStateValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"int and int64", 7, int64(7), true},
		{"int mismatch", 7, int64(8), false},
		{"int64", int64(7), int64(7), true},
		{"int against text", 9, "9", false},
		{"bool and int64", true, int64(1), true},
		{"false and int64", false, int64(0), true},
		{"bool mismatch", true, int64(0), false},
		{"string", "Magnitude", "Magnitude", true},
		{"string and bytes", "5", []byte("5"), true},
		{"string mismatch", "5", "6", false},
		{"both nil", nil, nil, true},
		{"nil against value", nil, int64(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateValuesEqual(tt.expected, tt.actual))
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "2 occurrences of any evaluation",
		Actual:   "1 occurrences",
		Trace:    []TraceEvent{{Seq: 1, Path: "event:Harvest", Property: "Chance", Value: ir.Int(31)}},
	}

	want := "Assertion failed: trace_count\n" +
		"  Expected: 2 occurrences of any evaluation\n" +
		"  Actual: 1 occurrences\n" +
		"\nFull trace:\n" +
		"  [1 event:Harvest.Chance = 31]\n"
	assert.Equal(t, want, err.Error())
}
