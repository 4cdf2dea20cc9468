package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/harness"
	"github.com/roach88/legends/internal/observe"
	"github.com/roach88/legends/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Seed     int64
	Metrics  bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunOutput is the result of the run command.
type RunOutput struct {
	RunID       string             `json:"run_id"`
	Seed        int64              `json:"seed"`
	Scenario    string             `json:"scenario"`
	Evaluations []EvaluationOutput `json:"evaluations"`
	Failures    int                `json:"failures"`
	Metrics     []observe.Point    `json:"metrics,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Evaluate a scenario's steps and record them",
		Long: `Compile the scenario's packs, evaluate its steps in order with one
seeded random source, and record every evaluation in a SQLite database
(created if it doesn't exist).

Expectations and assertions in the scenario are ignored; use test to check
them. The recorded run can be checked with replay and read with trace.

Example:
  legends run --db ./legends.db ./scenarios/village_day.yaml
  legends run --db ./legends.db ./scenarios/brawl.yaml --seed 99 --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioSteps(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (default: the scenario's seed)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "report compile and evaluation metrics")

	return cmd
}

func runScenarioSteps(opts *RunOptions, scenarioFile string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	seed := scenario.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.Seed
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *observe.Recorder
	var compilerOpts []compiler.Option
	runnerOpts := []engine.Option{engine.WithLabel(scenario.Name), engine.WithLogger(logger)}
	if opts.Metrics {
		if rec, err = observe.NewRecorder(); err != nil {
			return WrapExitError(ExitCommandError, "failed to create metrics", err)
		}
		compilerOpts = append(compilerOpts, compiler.WithMetrics(rec.Metrics))
		runnerOpts = append(runnerOpts, engine.WithMetrics(rec.Metrics))
	}

	plan, err := harness.Prepare(ctx, scenario, logger, compilerOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile packs", err)
	}

	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	runnerOpts = append(runnerOpts, engine.WithStore(st))
	if opts.RunIDs != nil {
		runnerOpts = append(runnerOpts, engine.WithRunIDs(opts.RunIDs))
	}
	runner := engine.NewRunner(plan.Catalog, runnerOpts...)

	run, err := runner.Run(ctx, seed, plan.Steps)
	if err != nil {
		return WrapExitError(ExitFailure, "run failed", err)
	}

	out := RunOutput{
		RunID:       run.ID,
		Seed:        run.Seed,
		Scenario:    scenario.Name,
		Evaluations: make([]EvaluationOutput, 0, len(run.Evaluations)),
		Failures:    run.Failures(),
	}
	for _, ev := range run.Evaluations {
		out.Evaluations = append(out.Evaluations, fromEngine(ev))
	}
	if rec != nil {
		if out.Metrics, err = rec.Collect(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to collect metrics", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: out, RunID: out.RunID})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (scenario %s, seed %d)\n\n", out.RunID, out.Scenario, out.Seed)
	for _, ev := range out.Evaluations {
		fmt.Fprintln(w, ev)
	}
	fmt.Fprintf(w, "\n%d evaluation(s), %d failed, recorded in %s\n", len(out.Evaluations), out.Failures, opts.Database)
	if len(out.Metrics) > 0 {
		fmt.Fprintln(w, "\nMetrics:")
		for _, p := range out.Metrics {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return nil
}
