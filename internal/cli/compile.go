package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/loader"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Globals  []string // Name=value
	FailFast bool
}

// CompilationResult summarizes a successful compile.
type CompilationResult struct {
	Files       int            `json:"files"`
	Events      []string       `json:"events"`
	Sites       []string       `json:"sites"`
	Definitions int            `json:"definitions"`
	Properties  int            `json:"properties"`
	Cache       compiler.Stats `json:"cache"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <pack-dir>...",
		Short: "Load, attach and compile definition packs",
		Long: `Load definition packs, attach every definition to one compiler and
compile every condition, chance and formatted text.

All errors are reported with the file position of the failing property.
Packs given together share one catalog, so names must be unique across
them.

Examples:
  legends compile ./packs/village
  legends compile ./packs/core ./packs/village --global Season=2
  legends compile ./packs/village --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Globals, "global", nil, "global constant visible to every expression (Name=value, repeatable)")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "report only the first load error")

	return cmd
}

func runCompile(opts *CompileOptions, dirs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	globals, err := parseGlobals(opts.Globals)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}

	mode := loader.LoadModeCollectAll
	if opts.FailFast {
		mode = loader.LoadModeFailFast
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c := compiler.New(compiler.WithLogger(logger), compiler.WithGlobals(globals))
	build, err := buildPacks(ctx, dirs, mode, c, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "compile canceled", err)
	}
	if build.Pack != nil {
		formatter.VerboseLog("Found %d pack file(s) in %v", len(build.Pack.Files), dirs)
	}
	if len(build.Issues) > 0 {
		return outputCompileIssues(formatter, build)
	}

	result, err := summarize(build.Pack, c, formatter)
	if err != nil {
		return WrapExitError(ExitCommandError, "summarize catalog", err)
	}
	return outputCompileSuccess(formatter, result)
}

// summarize counts the compiled catalog.
func summarize(pack *loader.Pack, c *compiler.Compiler, formatter *OutputFormatter) (*CompilationResult, error) {
	result := &CompilationResult{
		Files:  len(pack.Files),
		Events: []string{},
		Sites:  []string{},
		Cache:  c.Stats(),
	}
	for _, root := range pack.Catalog.Roots() {
		switch root.(type) {
		case *definition.Event:
			result.Events = append(result.Events, root.TopLevelName())
		case *definition.Site:
			result.Sites = append(result.Sites, root.TopLevelName())
		}
	}
	err := pack.Catalog.Walk(func(path string, d definition.Definition) error {
		formatter.VerboseLog("Compiled %s", path)
		result.Definitions++
		result.Properties += len(d.Schema().Properties)
		return nil
	})
	return result, err
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "\u2713 Compiled %d event(s), %d site(s) from %d file(s)\n\n",
		len(result.Events), len(result.Sites), result.Files)
	if len(result.Events) > 0 {
		fmt.Fprintln(w, "Events:")
		for _, name := range result.Events {
			fmt.Fprintf(w, "  %s\n", name)
		}
		fmt.Fprintln(w)
	}
	if len(result.Sites) > 0 {
		fmt.Fprintln(w, "Sites:")
		for _, name := range result.Sites {
			fmt.Fprintf(w, "  %s\n", name)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d definition(s), %d compiled unit(s)\n", result.Definitions, result.Cache.Size)
	return nil
}

// outputCompileError outputs a single command error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileIssues outputs every load or compile issue.
func outputCompileIssues(formatter *OutputFormatter, build *PackBuild) error {
	stage := "Compilation"
	if build.LoadFailed {
		stage = "Loading"
	}
	msg := fmt.Sprintf("%s failed with %d error(s)", stage, len(build.Issues))

	if formatter.Format == "json" {
		first := build.Issues[0]
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: first.Code, Message: first.Message},
			Data:   build.Issues,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}

	fmt.Fprintf(formatter.Writer, "\u2717 %s failed\n\n", stage)
	for _, issue := range build.Issues {
		if issue.Location != "" {
			fmt.Fprintln(formatter.Writer, issue.Location)
		}
		if issue.Target != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Target, issue.Code, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}
	return NewExitError(ExitCommandError, msg)
}
