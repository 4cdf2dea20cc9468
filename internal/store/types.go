package store

import "github.com/roach88/legends/internal/ir"

// Run is the header of one recorded run.
type Run struct {
	ID              string
	Seed            int64
	Label           string // scenario or pack name, informational only
	EngineVersion   string
	LanguageVersion string
}

// Evaluation is one recorded property evaluation. Exactly one of Value and
// ErrorCode is set.
type Evaluation struct {
	RunID    string
	Seq      int64
	Path     string
	Property string
	Key      string

	Bindings     ir.Bindings
	BindingsHash string

	Kind      ir.Kind
	Value     ir.Value
	ErrorCode string
	Error     string

	// RNGPosition is the number of draws taken from the run's RNG after
	// this evaluation finished.
	RNGPosition int64
}
