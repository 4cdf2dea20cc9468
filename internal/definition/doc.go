// Package definition implements the Attach/Compile lifecycle of definition
// trees: events, their results and effects, spawns, sites, and the conditions
// authored inside them.
//
// A tree is built from data, then attached to a shared compiler:
//
//	if err := definition.Attach(event, c, nil); err != nil { ... }
//	if err := definition.Compile(event); err != nil { ... }
//	chance, err := event.EvalChance(rng, subject, nil)
//
// Attach records the compiler, snapshots the upstream definition's combined
// additional parameters into a Handle, and creates one Deferred unit per
// compiled property. Compile realizes every Deferred so authoring errors
// surface before simulation. Evaluate requires Compile; calling it earlier
// is a ProtocolError, never an implicit compile.
//
// Each definition type registers its compiled properties in a Schema. The
// typed Eval<Property> and <Property>Parameters methods are thin wrappers
// over Evaluate and Parameters.
//
// A tree is single-writer: Attach and Compile must not run concurrently with
// any other use of the same tree. Once compiled, evaluation is safe from any
// number of goroutines.
package definition
