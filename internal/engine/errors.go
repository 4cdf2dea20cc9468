package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/expr"
)

// Codes recorded for failures that do not carry their own code.
const (
	CodeParseError = "PARSE_ERROR"
	CodeCanceled   = "CANCELED"
	CodeInternal   = "INTERNAL"
)

// ErrNoStore is returned by Replay on a runner built without WithStore.
var ErrNoStore = errors.New("runner has no store")

// ErrorCode returns the stable code recorded for a failed evaluation: the
// runtime, bind or protocol code when err carries one.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var (
		re *compiler.RuntimeError
		be *compiler.BindError
		xe *expr.ParseError
		pe *definition.ProtocolError
	)
	switch {
	case errors.As(err, &re):
		return string(re.Code)
	case errors.As(err, &be):
		return string(be.Code)
	case errors.As(err, &xe):
		return CodeParseError
	case errors.As(err, &pe):
		return string(pe.Code)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}

// Divergence is the first difference between a stored run and its replay.
type Divergence struct {
	Seq      int64
	Path     string
	Property string
	Key      string

	// Field is "value", "error_code", "rng_position" or "steps".
	Field    string
	Recorded string
	Replayed string
}

func (d *Divergence) Error() string {
	target := d.Path + "." + d.Property
	if d.Key != "" {
		target += "[" + d.Key + "]"
	}
	return fmt.Sprintf("DIVERGED: seq %d %s: %s recorded %s, replayed %s",
		d.Seq, target, d.Field, d.Recorded, d.Replayed)
}

// IsDivergence returns true if err is or wraps a *Divergence.
func IsDivergence(err error) bool {
	var d *Divergence
	return errors.As(err, &d)
}
