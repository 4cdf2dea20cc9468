package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/loader"
	"github.com/roach88/legends/internal/store"
	"github.com/roach88/legends/internal/testutil"
)

// Harness executes one scenario against a fresh store.
type Harness struct {
	store  *store.Store
	runner *engine.Runner
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Plan is a scenario ready to execute: its packs compiled against the
// scenario's globals and its steps bound to the scenario's things.
type Plan struct {
	Catalog *definition.Catalog
	Steps   []engine.Step
}

// Prepare loads and compiles the scenario's packs and binds its steps. Load
// errors are joined; compile failures are reported one diagnostic per line.
// opts are applied to the compiler after the logger and globals.
func Prepare(ctx context.Context, scenario *Scenario, logger *slog.Logger, opts ...compiler.Option) (*Plan, error) {
	things := make(map[string]*ir.Thing, len(scenario.Things))
	for handle, spec := range scenario.Things {
		name := spec.Name
		if name == "" {
			name = handle
		}
		things[handle] = ir.NewThing(name, spec.Attributes)
	}

	globals, err := bindings(scenario.Globals, things)
	if err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}

	pack, errs := loader.LoadAll(scenario.Packs, loader.LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load packs: %w", errors.Join(errs...))
	}
	c := compiler.New(append([]compiler.Option{compiler.WithLogger(logger), compiler.WithGlobals(globals)}, opts...)...)
	diags, err := pack.Build(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to attach packs: %w", err)
	}
	if len(diags) > 0 {
		lines := make([]string, len(diags))
		for i, d := range diags {
			lines[i] = d.String()
		}
		return nil, fmt.Errorf("failed to compile packs:\n%s", strings.Join(lines, "\n"))
	}

	steps := make([]engine.Step, len(scenario.Steps))
	for i, spec := range scenario.Steps {
		b, err := bindings(spec.Bind, things)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = engine.Step{Path: spec.Path, Property: spec.Property, Key: spec.Key, Bindings: b}
	}

	return &Plan{Catalog: pack.Catalog, Steps: steps}, nil
}

// Run executes a scenario and returns the result. An error means the
// scenario could not run at all: its packs failed to load or compile, or
// a binding is invalid. Failed expectations are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context.
//
// Execution flow:
//  1. Load and compile the packs with the scenario's globals
//  2. Open a fresh in-memory store
//  3. Run the steps with a fixed run ID and a clock starting at zero
//  4. Check step expectations and assertions
//  5. Replay the stored run and fail on divergence
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	plan, err := Prepare(ctx, scenario, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	h := &Harness{
		store: st,
		runner: engine.NewRunner(plan.Catalog,
			engine.WithClock(clock),
			engine.WithStore(st),
			engine.WithRunIDs(testutil.NewFixedRunID(scenario.RunID)),
			engine.WithLabel(scenario.Name),
			engine.WithLogger(logger),
		),
		clock:  clock,
		logger: logger,
	}
	return h.execute(ctx, scenario, plan.Steps)
}

func (h *Harness) execute(ctx context.Context, scenario *Scenario, steps []engine.Step) (*Result, error) {
	run, err := h.runner.Run(ctx, scenario.Seed, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result := NewResult()
	result.RunID = run.ID
	result.Seed = run.Seed
	for i, ev := range run.Evaluations {
		result.Trace = append(result.Trace, traceEvent(ev))
		if msg := checkExpectation(scenario.Steps[i], ev); msg != "" {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, scenario.Steps[i].Target(), msg))
		}
		h.logger.Info("step completed", "step", i, "seq", ev.Seq, "target", scenario.Steps[i].Target(), "code", ev.Code)
	}

	actx := &AssertionContext{Store: h.store, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	replay, err := h.runner.Replay(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay run: %w", err)
	}
	if !replay.Matched() {
		result.AddError(replay.Divergence.Error())
	}

	return result, nil
}

// checkExpectation returns a failure message, or "" when the evaluation
// meets the step's expectation.
func checkExpectation(step StepSpec, ev engine.Evaluation) string {
	switch {
	case step.ExpectError != "":
		if ev.Code != step.ExpectError {
			if ev.Err == nil {
				return fmt.Sprintf("expected error %s, got value %s", step.ExpectError, formatValue(ev.Value))
			}
			return fmt.Sprintf("expected error %s, got %s: %v", step.ExpectError, ev.Code, ev.Err)
		}
	case ev.Err != nil:
		return fmt.Sprintf("unexpected error %s: %v", ev.Code, ev.Err)
	case step.Expect != nil:
		want, err := scalarValue(step.Expect)
		if err != nil {
			return err.Error()
		}
		if want != ev.Value {
			return fmt.Sprintf("expected %s, got %s", formatValue(want), formatValue(ev.Value))
		}
	}
	return ""
}

// bindings converts scenario values to bindings. A string naming a thing
// handle binds that thing.
func bindings(values map[string]any, things map[string]*ir.Thing) (ir.Bindings, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(ir.Bindings, len(values))
	for name, v := range values {
		if handle, ok := v.(string); ok {
			if t, isThing := things[handle]; isThing {
				out[name] = t
				continue
			}
		}
		val, err := scalarValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
