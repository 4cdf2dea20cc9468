package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/ir"
)

func TestGolden_VillageDay(t *testing.T) {
	s := loadScenario(t, "testdata/scenarios/village_day.yaml")

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalTrace(t *testing.T) {
	result := &Result{
		RunID: "r1",
		Seed:  3,
		Trace: []TraceEvent{
			{Seq: 1, Path: "site:Market", Property: "Attributes", Key: "Guards", Value: ir.Int(1)},
			{Seq: 2, Path: "event:Festival", Property: "Chance", ErrorCode: "NOT_FOUND", RNGPosition: 2},
		},
	}

	got, err := MarshalTrace("x", result)
	require.NoError(t, err)

	want := `{"run_id":"r1","scenario_name":"x","seed":3,"trace":[` +
		`{"key":"Guards","path":"site:Market","property":"Attributes","rng_position":0,"seq":1,"value":1},` +
		`{"error_code":"NOT_FOUND","path":"event:Festival","property":"Chance","rng_position":2,"seq":2}]}`
	assert.Equal(t, want, string(got))
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	s := loadScenario(t, "testdata/scenarios/brawl.yaml")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalTrace(s.Name, first)
	require.NoError(t, err)
	b, err := MarshalTrace(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
