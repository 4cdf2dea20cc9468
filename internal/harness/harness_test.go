package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
)

func loadScenario(t *testing.T, path string) *Scenario {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	return s
}

func TestRun_VillageDay(t *testing.T) {
	s := loadScenario(t, "testdata/scenarios/village_day.yaml")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "village-day", result.RunID)
	assert.Equal(t, int64(7), result.Seed)

	require.Len(t, result.Trace, 10)
	assert.Equal(t, ir.Int(31), result.Trace[0].Value)
	assert.Equal(t, ir.String("Tom earns 5 gold"), result.Trace[4].Value)
	assert.Equal(t, "UNKNOWN_KEY", result.Trace[7].ErrorCode)
	assert.Equal(t, "NOT_FOUND", result.Trace[9].ErrorCode)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
}

func TestRun_Brawl(t *testing.T) {
	s := loadScenario(t, "testdata/scenarios/brawl.yaml")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "test-run-default", result.RunID)

	require.Len(t, result.Trace, 5)
	chance, ok := result.Trace[0].Value.(ir.Int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int64(chance), int64(1))
	assert.LessOrEqual(t, int64(chance), int64(100))

	magnitude, ok := result.Trace[3].Value.(ir.Int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int64(magnitude), int64(-6))
	assert.LessOrEqual(t, int64(magnitude), int64(-1))
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "testdata/scenarios/brawl.yaml")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_FailingExpectations(t *testing.T) {
	s := loadScenario(t, "testdata/failing/wrong_expectations.yaml")

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)

	assert.Equal(t, "step 0 (event:Harvest.Chance): expected 30, got 31", result.Errors[0])
	assert.Equal(t, `step 1 (event:Harvest.Description): expected error UNBOUND_VARIABLE, got value "Tom brings in the harvest"`, result.Errors[1])
	assert.Contains(t, result.Errors[2], "step 2 (event:Harvest/Subject.Condition): unexpected error UNBOUND_VARIABLE")
	assert.Contains(t, result.Errors[3], "Assertion failed: trace_count")
	assert.Contains(t, result.Errors[3], "1 occurrences of path=site:Market")
}

func TestRun_PackFailsToCompile(t *testing.T) {
	s := &Scenario{
		Name:  "broken",
		Packs: []string{"../loader/testdata/packs/broken"},
		Steps: []StepSpec{{Path: "event:Flood", Property: "Chance"}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile packs")
	assert.Contains(t, err.Error(), "Flood")
}

func TestRun_PackFailsToLoad(t *testing.T) {
	s := &Scenario{
		Name:  "invalid",
		Packs: []string{"../loader/testdata/packs/invalid"},
		Steps: []StepSpec{{Path: "event:A", Property: "Chance"}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load packs")
}

func TestRun_InvalidGlobal(t *testing.T) {
	s := &Scenario{
		Name:    "bad_global",
		Packs:   []string{"testdata/packs/village"},
		Globals: map[string]any{"Season": 1.5},
		Steps:   []StepSpec{{Path: "event:Harvest", Property: "Chance"}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "globals: Season: floats are not allowed")
}

func TestRunContext_Canceled(t *testing.T) {
	s := loadScenario(t, "testdata/scenarios/village_day.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, s)
	require.Error(t, err)
}

func TestBindings(t *testing.T) {
	tom := ir.NewThing("Tom", map[string]int64{"Health": 4})
	things := map[string]*ir.Thing{"tom": tom}

	b, err := bindings(map[string]any{"Subject": "tom", "Mood": "calm", "Count": 3, "Awake": true}, things)
	require.NoError(t, err)
	assert.Same(t, tom, b["Subject"])
	assert.Equal(t, ir.String("calm"), b["Mood"])
	assert.Equal(t, ir.Int(3), b["Count"])
	assert.Equal(t, ir.Bool(true), b["Awake"])

	b, err = bindings(nil, things)
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = bindings(map[string]any{"Subject": nil}, things)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Subject: null values are not allowed")
}

func TestCheckExpectation(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		step StepSpec
		ev   engine.Evaluation
		want string
	}{
		{"value matches", StepSpec{Expect: 5}, engine.Evaluation{Value: ir.Int(5)}, ""},
		{"no expectation", StepSpec{}, engine.Evaluation{Value: ir.Int(5)}, ""},
		{"value differs", StepSpec{Expect: "a"}, engine.Evaluation{Value: ir.String("b")}, `expected "a", got "b"`},
		{"kind differs", StepSpec{Expect: 1}, engine.Evaluation{Value: ir.Bool(true)}, "expected 1, got true"},
		{"error matches", StepSpec{ExpectError: "NOT_FOUND"}, engine.Evaluation{Err: boom, Code: "NOT_FOUND"}, ""},
		{"error expected, value produced", StepSpec{ExpectError: "NOT_FOUND"}, engine.Evaluation{Value: ir.Int(2)}, "expected error NOT_FOUND, got value 2"},
		{"other error", StepSpec{ExpectError: "NOT_FOUND"}, engine.Evaluation{Err: boom, Code: "INTERNAL"}, "expected error NOT_FOUND, got INTERNAL: boom"},
		{"unexpected error", StepSpec{Expect: 1}, engine.Evaluation{Err: boom, Code: "INTERNAL"}, "unexpected error INTERNAL: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkExpectation(tt.step, tt.ev))
		})
	}
}
