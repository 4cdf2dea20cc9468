package loader

import (
	"context"
	"fmt"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/engine"
)

// Diagnostic is a compile failure located in its pack file.
type Diagnostic struct {
	Pos      Pos    `json:"-"`
	Location string `json:"location,omitempty"`
	Path     string `json:"path"`
	Property string `json:"property"`
	Key      string `json:"key,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (d Diagnostic) String() string {
	target := d.Path + "." + d.Property
	if d.Key != "" {
		target += "[" + d.Key + "]"
	}
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s: %s", d.Pos, target, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", target, d.Code, d.Message)
}

// Diagnose locates every property failure joined into err. Failures that
// are not attributed to a property are returned as one diagnostic with an
// empty path.
func Diagnose(err error, sources SourceMap) []Diagnostic {
	if err == nil {
		return nil
	}
	perrs := definition.PropertyErrors(err)
	if len(perrs) == 0 {
		return []Diagnostic{{Code: engine.ErrorCode(err), Message: err.Error()}}
	}

	out := make([]Diagnostic, 0, len(perrs))
	for _, pe := range perrs {
		diag := Diagnostic{
			Path:     pe.Path,
			Property: pe.Property,
			Key:      pe.Key,
			Code:     engine.ErrorCode(pe.Err),
			Message:  pe.Err.Error(),
		}
		if pos, ok := sources.Lookup(pe.Path, pe.Property, pe.Key); ok {
			diag.Pos = pos
			diag.Location = pos.String()
		}
		out = append(out, diag)
	}
	return out
}

// Build attaches the pack's catalog to c and compiles it. Compile failures
// are returned as diagnostics; err is set only when the catalog could not
// be attached or the context ended.
func (p *Pack) Build(ctx context.Context, c *compiler.Compiler) ([]Diagnostic, error) {
	if err := p.Catalog.Attach(ctx, c); err != nil {
		return nil, err
	}
	if err := p.Catalog.Compile(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return Diagnose(err, p.Sources), nil
	}
	return nil, nil
}
