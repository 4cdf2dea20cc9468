package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/loader"
)

// ParamsResult lists the variables a property's expression may reference.
type ParamsResult struct {
	Path       string   `json:"path"`
	Property   string   `json:"property"`
	Parameters []string `json:"parameters"`
	Keys       []string `json:"keys,omitempty"`
}

// NewParamsCommand creates the params command.
func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params <pack-dir> <path> <property>",
		Short: "List the variables a property may reference",
		Long: `List the variables a property's expression may reference, in scope
order: the property's fixed variables, then the additional parameters of
the definition and of every definition above it.

The pack is attached but not compiled, so this works on packs whose
expressions do not compile yet.

Examples:
  legends params ./packs/village event:Brawl Description
  legends params ./packs/village 'event:Brawl/Objects[Rival]' Distance
  legends params ./packs/village site:Market Attributes`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParams(rootOpts, args[0], args[1], args[2], cmd)
		},
	}

	return cmd
}

func runParams(opts *RootOptions, dir, path, property string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd.ErrOrStderr())

	pack, errs := loader.Load(dir, loader.LoadModeCollectAll)
	if len(errs) > 0 {
		issue := loadIssue(errs[0])
		_ = formatter.Error(issue.Code, issue.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("failed to load pack: %s", issue))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := pack.Catalog.Attach(ctx, compiler.New(compiler.WithLogger(logger))); err != nil {
		return paramsError(formatter, err)
	}

	d, err := pack.Catalog.Lookup(path)
	if err != nil {
		return paramsError(formatter, err)
	}
	params, err := definition.Parameters(d, property)
	if err != nil {
		return paramsError(formatter, err)
	}
	result := ParamsResult{Path: path, Property: property, Parameters: params}
	if p, ok := d.Schema().Property(property); ok && p.Keyed {
		if result.Keys, err = definition.Keys(d, property); err != nil {
			return paramsError(formatter, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "%s.%s: %s\n", path, property, strings.Join(params, ", "))
	if len(result.Keys) > 0 {
		fmt.Fprintf(w, "keys: %s\n", strings.Join(result.Keys, ", "))
	}
	return nil
}

func paramsError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(errorCode(err), err.Error(), nil)
	return WrapExitError(ExitCommandError, "params", err)
}
