package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Path     string // with Property, every run's evaluations of one property
	Property string
}

// EvaluationOutput is one evaluation as printed by run and trace.
type EvaluationOutput struct {
	RunID       string `json:"run_id,omitempty"`
	Seq         int64  `json:"seq"`
	Path        string `json:"path"`
	Property    string `json:"property"`
	Key         string `json:"key,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Value       any    `json:"value,omitempty"`
	Code        string `json:"error_code,omitempty"`
	Error       string `json:"error,omitempty"`
	RNGPosition int64  `json:"rng_position"`
}

func (e EvaluationOutput) target() string {
	t := e.Path + "." + e.Property
	if e.Key != "" {
		t += "[" + e.Key + "]"
	}
	return t
}

func (e EvaluationOutput) String() string {
	if e.Code != "" {
		return fmt.Sprintf("%4d %s -> %s: %s", e.Seq, e.target(), e.Code, e.Error)
	}
	return fmt.Sprintf("%4d %s = %v", e.Seq, e.target(), e.Value)
}

func fromEngine(ev engine.Evaluation) EvaluationOutput {
	out := EvaluationOutput{
		Seq:         ev.Seq,
		Path:        ev.Path,
		Property:    ev.Property,
		Key:         ev.Key,
		Kind:        kindName(ev.Kind),
		Value:       jsonValue(ev.Value),
		Code:        ev.Code,
		RNGPosition: ev.RNGPosition,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

func fromStore(ev store.Evaluation) EvaluationOutput {
	return EvaluationOutput{
		RunID:       ev.RunID,
		Seq:         ev.Seq,
		Path:        ev.Path,
		Property:    ev.Property,
		Key:         ev.Key,
		Kind:        kindName(ev.Kind),
		Value:       jsonValue(ev.Value),
		Code:        ev.ErrorCode,
		Error:       ev.Error,
		RNGPosition: ev.RNGPosition,
	}
}

func kindName(k ir.Kind) string {
	if k == ir.KindInvalid {
		return ""
	}
	return k.String()
}

// RunSummary is a stored run header.
type RunSummary struct {
	ID              string `json:"id"`
	Seed            int64  `json:"seed"`
	Label           string `json:"label,omitempty"`
	LanguageVersion string `json:"language_version"`
}

// TraceResult holds the trace output.
type TraceResult struct {
	Run         *RunSummary        `json:"run,omitempty"`
	Runs        []RunSummary       `json:"runs,omitempty"`
	Evaluations []EvaluationOutput `json:"evaluations,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Show recorded runs and evaluations",
		Long: `Show what the evaluation log recorded.

With a run ID, prints every evaluation of that run in order. With --path
and --property, prints every recorded evaluation of that property across
all runs. With neither, lists the recorded runs.

Examples:
  legends trace --db ./legends.db
  legends trace --db ./legends.db 01920d3e-7c4a-7def-8000-000000000000
  legends trace --db ./legends.db --path event:Harvest --property Chance
  legends trace --db ./legends.db village-day --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runTrace(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Path, "path", "", "definition path to filter by (requires --property)")
	cmd.Flags().StringVar(&opts.Property, "property", "", "property to filter by (requires --path)")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	if (opts.Path == "") != (opts.Property == "") {
		return NewExitError(ExitCommandError, "--path and --property must be given together")
	}
	if runID != "" && opts.Path != "" {
		return NewExitError(ExitCommandError, "give either a run ID or --path/--property, not both")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var result TraceResult
	switch {
	case runID != "":
		result, err = traceRun(ctx, st, runID)
	case opts.Path != "":
		result, err = traceProperty(ctx, st, opts.Path, opts.Property)
	default:
		result, err = listRuns(ctx, st)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read evaluation log", err)
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result, RunID: runID})
	}
	outputTraceText(formatter.Writer, result)
	return nil
}

func traceRun(ctx context.Context, st *store.Store, runID string) (TraceResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}
	evals, err := st.ReadEvaluations(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}
	summary := runSummary(run)
	result := TraceResult{Run: &summary, Evaluations: make([]EvaluationOutput, 0, len(evals))}
	for _, ev := range evals {
		out := fromStore(ev)
		out.RunID = ""
		result.Evaluations = append(result.Evaluations, out)
	}
	return result, nil
}

func traceProperty(ctx context.Context, st *store.Store, path, property string) (TraceResult, error) {
	evals, err := st.ReadEvaluationsByPath(ctx, path, property)
	if err != nil {
		return TraceResult{}, err
	}
	result := TraceResult{Evaluations: make([]EvaluationOutput, 0, len(evals))}
	for _, ev := range evals {
		result.Evaluations = append(result.Evaluations, fromStore(ev))
	}
	return result, nil
}

func listRuns(ctx context.Context, st *store.Store) (TraceResult, error) {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return TraceResult{}, err
	}
	result := TraceResult{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		result.Runs = append(result.Runs, runSummary(run))
	}
	return result, nil
}

func runSummary(run store.Run) RunSummary {
	return RunSummary{ID: run.ID, Seed: run.Seed, Label: run.Label, LanguageVersion: run.LanguageVersion}
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult) {
	if result.Run != nil {
		fmt.Fprintf(w, "Run: %s (seed %d", result.Run.ID, result.Run.Seed)
		if result.Run.Label != "" {
			fmt.Fprintf(w, ", %s", result.Run.Label)
		}
		fmt.Fprintln(w, ")")
		fmt.Fprintln(w)
	}

	if result.Runs != nil {
		if len(result.Runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return
		}
		for _, run := range result.Runs {
			fmt.Fprintf(w, "%s  seed=%d  %s\n", run.ID, run.Seed, run.Label)
		}
		return
	}

	if len(result.Evaluations) == 0 {
		fmt.Fprintln(w, "No evaluations recorded.")
		return
	}
	lastRun := ""
	for _, ev := range result.Evaluations {
		if ev.RunID != "" && ev.RunID != lastRun {
			fmt.Fprintf(w, "Run %s:\n", ev.RunID)
			lastRun = ev.RunID
		}
		fmt.Fprintln(w, ev)
	}
}
