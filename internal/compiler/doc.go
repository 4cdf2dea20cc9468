// Package compiler binds parsed condition source against a parameter scope
// and produces immutable, cached Units ready for repeated evaluation.
//
// Three modes share one binder and one evaluator:
//
//	ModeSimple   a single expression yielding int, bool or string
//	ModeComplex  statements; every path must end in exactly one return
//	ModeText     formatted text whose {spans} are stringified and joined
//
// Every scope parameter is thing-valued and is read through Name->Attribute.
// Attribute names are resolved at evaluation, since a thing's attribute bag
// is open-ended. The reserved thing Random rolls dice from the Rand passed to
// Evaluate (Random->D6, Random->Percent).
//
// Compile is memoized by ir.UnitKey over (mode, NFC source, parameter set,
// result kind) in an LRU. Concurrent misses for one key share a single
// parse+bind through singleflight.
package compiler
