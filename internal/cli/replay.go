package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/harness"
	"github.com/roach88/legends/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Seed          int64  `json:"seed"`
	Evaluations   int    `json:"evaluations"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml> [run-id]",
		Short: "Replay recorded runs and verify determinism",
		Long: `Re-evaluate recorded runs from their seeds and compare every
evaluation with the log: error code, value, and random draws consumed.

The scenario supplies the packs and globals to compile against. Without a
run ID, every run recorded under the scenario's name is replayed.

Exit codes:
  0 - All runs replayed identically
  1 - A run diverged from its log
  2 - Command error (database not found, run not found, etc.)

Examples:
  legends replay --db ./legends.db ./scenarios/brawl.yaml
  legends replay --db ./legends.db ./scenarios/brawl.yaml 01920d3e-7c4a-7def-8000-000000000000
  legends replay --db ./legends.db ./scenarios/brawl.yaml --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 2 {
				runID = args[1]
			}
			return runReplay(opts, args[0], runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, scenarioFile, runID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	plan, err := harness.Prepare(ctx, scenario, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile packs", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runIDs, err := selectRuns(ctx, st, scenario.Name, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}
	runner := engine.NewRunner(plan.Catalog, engine.WithStore(st), engine.WithLogger(logger))
	for _, id := range runIDs {
		replay, err := runner.Replay(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		r := ReplayRunResult{
			RunID:         id,
			Seed:          replay.Seed,
			Evaluations:   replay.Evaluations,
			Deterministic: replay.Matched(),
		}
		if !r.Deterministic {
			r.Divergence = replay.Divergence.Error()
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, r)
	}

	if opts.Format == "json" {
		return outputReplayJSON(newFormatter(opts.RootOptions, cmd), result)
	}
	return outputReplayText(cmd, result)
}

// selectRuns returns runID alone, or every run labelled with the
// scenario's name.
func selectRuns(ctx context.Context, st *store.Store, label, runID string) ([]string, error) {
	if runID != "" {
		return []string{runID}, nil
	}
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, run := range runs {
		if run.Label == label {
			ids = append(ids, run.ID)
		}
	}
	return ids, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDiverged,
			Message: "determinism verification failed",
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}
	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "\u2713"
		if !run.Deterministic {
			status = "\u2717"
		}
		fmt.Fprintf(w, "%s Run: %s (seed %d, %d evaluation(s))\n", status, run.RunID, run.Seed, run.Evaluations)
		if !run.Deterministic {
			fmt.Fprintf(w, "  %s\n", run.Divergence)
		}
	}
	fmt.Fprintln(w)

	if result.AllDeterministic {
		fmt.Fprintln(w, "\u2713 All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "\u2717 Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
