package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/loader"
)

// Issue is one problem found while loading or compiling packs.
type Issue struct {
	Location string `json:"location,omitempty"`
	Target   string `json:"target,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Location != "" {
		b.WriteString(i.Location + ": ")
	}
	if i.Target != "" {
		b.WriteString(i.Target + ": ")
	}
	b.WriteString(i.Code + ": " + i.Message)
	return b.String()
}

// loadIssue converts a loader error into an Issue.
func loadIssue(err error) Issue {
	var (
		le *loader.LoadError
		ve loader.ValidationError
		ce *loader.CompileError
	)
	switch {
	case errors.As(err, &le):
		return Issue{Location: posString(le.Pos), Code: le.Code, Message: le.Message}
	case errors.As(err, &ve):
		return Issue{Location: posString(ve.Pos), Target: ve.Field, Code: ve.Code, Message: ve.Message}
	case errors.As(err, &ce):
		issue := Issue{Target: ce.Field, Code: loader.ErrCodeBuildFailed, Message: ce.Message}
		if ce.Pos.IsValid() {
			issue.Location = fmt.Sprintf("%s:%d:%d", ce.Pos.Filename(), ce.Pos.Line(), ce.Pos.Column())
		}
		return issue
	default:
		return Issue{Code: ErrCodeGeneric, Message: err.Error()}
	}
}

func diagnosticIssue(d loader.Diagnostic) Issue {
	issue := Issue{Location: d.Location, Code: d.Code, Message: d.Message}
	if d.Path != "" {
		issue.Target = d.Path + "." + d.Property
		if d.Key != "" {
			issue.Target += "[" + d.Key + "]"
		}
	}
	return issue
}

func posString(p loader.Pos) string {
	if !p.IsValid() {
		return ""
	}
	return p.String()
}

// PackBuild is the outcome of loading and compiling pack directories.
type PackBuild struct {
	Pack   *loader.Pack
	Issues []Issue

	// LoadFailed is set when the packs could not be read or failed
	// validation; nothing was attached.
	LoadFailed bool
}

// buildPacks loads dirs and, when they validate, attaches and compiles
// them with c. ctx cancellation is the only error.
func buildPacks(ctx context.Context, dirs []string, mode loader.LoadMode, c *compiler.Compiler, logger *slog.Logger) (*PackBuild, error) {
	pack, errs := loader.LoadAll(dirs, mode)
	if len(errs) > 0 {
		b := &PackBuild{Pack: pack, LoadFailed: true}
		for _, err := range errs {
			b.Issues = append(b.Issues, loadIssue(err))
		}
		return b, nil
	}
	logger.Debug("packs loaded", "dirs", dirs, "files", len(pack.Files))

	diags, err := pack.Build(ctx, c)
	if err != nil {
		return nil, err
	}
	b := &PackBuild{Pack: pack}
	for _, d := range diags {
		b.Issues = append(b.Issues, diagnosticIssue(d))
	}
	return b, nil
}

// parseGlobals parses repeated Name=value flags. Values that parse as an
// integer or a boolean take that kind; anything else is a string.
func parseGlobals(specs []string) (ir.Bindings, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(ir.Bindings, len(specs))
	for _, spec := range specs {
		name, raw, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid global %q: expected Name=value", spec)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("global %q given twice", name)
		}
		out[name] = scalar(raw)
	}
	return out, nil
}

func scalar(raw string) ir.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ir.Int(n)
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return ir.Bool(b)
	}
	return ir.String(raw)
}

// parseThing parses Var[=Name]:Attr=n,Attr=n. The thing's name defaults
// to the variable name; the attribute list may be empty.
func parseThing(spec string) (string, *ir.Thing, error) {
	head, attrList, _ := strings.Cut(spec, ":")
	variable, name, hasName := strings.Cut(head, "=")
	if variable == "" {
		return "", nil, fmt.Errorf("invalid thing %q: expected Var[=Name]:Attr=n,...", spec)
	}
	if !hasName || name == "" {
		name = variable
	}

	attrs := make(map[string]int64)
	if attrList != "" {
		for _, pair := range strings.Split(attrList, ",") {
			attr, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || attr == "" {
				return "", nil, fmt.Errorf("invalid attribute %q in thing %s", pair, variable)
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return "", nil, fmt.Errorf("attribute %s of %s: %q is not an integer", attr, variable, raw)
			}
			attrs[attr] = n
		}
	}
	return variable, ir.NewThing(name, attrs), nil
}

// errorCode is engine.ErrorCode with a fallback for errors that carry no
// code of their own.
func errorCode(err error) string {
	code := engine.ErrorCode(err)
	if code == "" {
		return ErrCodeGeneric
	}
	return code
}
