package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Type    string   // int | bool | string | text
	Things  []string // Var[=Name]:Attr=n,...
	Globals []string // Name=value
	Seed    int64
	Complex bool
}

// EvalResult is one evaluated expression.
type EvalResult struct {
	Source      string   `json:"source"`
	Mode        string   `json:"mode"`
	Kind        string   `json:"kind"`
	Parameters  []string `json:"parameters"`
	Value       any      `json:"value"`
	Seed        int64    `json:"seed"`
	RNGPosition int64    `json:"rng_position"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Compile and evaluate one expression",
		Long: `Compile one expression against the things given with --thing and
evaluate it with a seeded random source.

Each --thing declares a variable the expression may reference, in the
order given. The thing's name defaults to the variable name.

Exit codes:
  0 - Evaluated
  1 - Runtime error (unbound variable, unknown attribute, division by zero)
  2 - Compile error

Examples:
  legends eval 'Subject->Health > 3' --type bool --thing Subject:Health=5,Fear=23
  legends eval '{Subject} fears {Bandit}' --type text --thing Subject=Aldric --thing Bandit=Grim
  legends eval 'Random->D6 + Bonus' --var Bonus=2 --seed 42
  legends eval 'if Subject->Fear > 20 { return 1 }; return 0' --complex --thing Subject:Fear=23`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "int", "result type (int|bool|string|text)")
	cmd.Flags().StringArrayVar(&opts.Things, "thing", nil, "thing variable Var[=Name]:Attr=n,... (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Globals, "var", nil, "global constant Name=value (repeatable)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&opts.Complex, "complex", false, "parse as statements with if/else and return")

	return cmd
}

func runEval(opts *EvalOptions, source string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	mode, kind, err := evalMode(opts.Type, opts.Complex)
	if err != nil {
		return evalUsageError(formatter, err)
	}
	globals, err := parseGlobals(opts.Globals)
	if err != nil {
		return evalUsageError(formatter, err)
	}

	names := make([]string, 0, len(opts.Things))
	bindings := make(ir.Bindings, len(opts.Things))
	for _, spec := range opts.Things {
		variable, thing, err := parseThing(spec)
		if err != nil {
			return evalUsageError(formatter, err)
		}
		names = append(names, variable)
		bindings[variable] = thing
	}
	scope, err := compiler.NewScope(names...)
	if err != nil {
		return evalCompileError(formatter, err)
	}

	c := compiler.New(compiler.WithLogger(logger), compiler.WithGlobals(globals))
	unit, err := c.Compile(mode, source, scope, kind)
	if err != nil {
		return evalCompileError(formatter, err)
	}
	formatter.VerboseLog("Compiled %s unit %s", unit.Mode(), unit.Key())

	rng := engine.NewRNG(opts.Seed)
	v, err := unit.Evaluate(rng, bindings)
	if err != nil {
		code := errorCode(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	result := EvalResult{
		Source:      unit.Source(),
		Mode:        string(unit.Mode()),
		Kind:        unit.Result().String(),
		Parameters:  scope.Names(),
		Value:       jsonValue(v),
		Seed:        opts.Seed,
		RNGPosition: rng.Position(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, ir.Format(v))
	formatter.VerboseLog("kind=%s rng_position=%d", result.Kind, result.RNGPosition)
	return nil
}

// evalMode maps --type and --complex to a compile mode and result kind.
func evalMode(typ string, statements bool) (compiler.Mode, ir.Kind, error) {
	if typ == "text" {
		if statements {
			return "", ir.KindInvalid, fmt.Errorf("--complex cannot be combined with --type text")
		}
		return compiler.ModeText, ir.KindString, nil
	}
	kind, err := ir.ParseKind(typ)
	if err != nil || kind == ir.KindThing {
		return "", ir.KindInvalid, fmt.Errorf("invalid type %q: must be int, bool, string or text", typ)
	}
	if statements {
		return compiler.ModeComplex, kind, nil
	}
	return compiler.ModeSimple, kind, nil
}

// jsonValue converts v to a plain Go value for JSON output.
func jsonValue(v ir.Value) any {
	switch val := v.(type) {
	case ir.Int:
		return int64(val)
	case ir.Bool:
		return bool(val)
	case ir.String:
		return string(val)
	case *ir.Thing:
		return val.Name
	default:
		return nil
	}
}

func evalUsageError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "invalid arguments", err)
}

func evalCompileError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(errorCode(err), err.Error(), nil)
	return WrapExitError(ExitCommandError, "compile failed", err)
}
