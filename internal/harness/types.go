package harness

import (
	"fmt"
	"strconv"

	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
)

// TraceEvent is one evaluation as seen by assertions and golden files.
type TraceEvent struct {
	Seq         int64    `json:"seq"`
	Path        string   `json:"path"`
	Property    string   `json:"property"`
	Key         string   `json:"key,omitempty"`
	Value       ir.Value `json:"-"`
	ErrorCode   string   `json:"error_code,omitempty"`
	RNGPosition int64    `json:"rng_position"`
}

func traceEvent(ev engine.Evaluation) TraceEvent {
	return TraceEvent{
		Seq:         ev.Seq,
		Path:        ev.Path,
		Property:    ev.Property,
		Key:         ev.Key,
		Value:       ev.Value,
		ErrorCode:   ev.Code,
		RNGPosition: ev.RNGPosition,
	}
}

// Target returns path.Property or path.Property[key].
func (e TraceEvent) Target() string {
	return target(e.Path, e.Property, e.Key)
}

func (e TraceEvent) String() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%d %s -> %s", e.Seq, e.Target(), e.ErrorCode)
	}
	return fmt.Sprintf("%d %s = %s", e.Seq, e.Target(), formatValue(e.Value))
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held and the run
	// replayed identically.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`

	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// formatValue renders a value the way scenarios write it.
func formatValue(v ir.Value) string {
	switch val := v.(type) {
	case nil:
		return "<none>"
	case ir.String:
		return strconv.Quote(string(val))
	default:
		return ir.Format(v)
	}
}

// scalarValue converts a YAML-decoded scalar to a value.
func scalarValue(v any) (ir.Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null values are not allowed")
	case int:
		return ir.Int(int64(val)), nil
	case int64:
		return ir.Int(val), nil
	case bool:
		return ir.Bool(val), nil
	case string:
		return ir.String(val), nil
	case float64:
		return nil, fmt.Errorf("floats are not allowed: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
