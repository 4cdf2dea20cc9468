// Package engine runs compiled definitions.
//
// A [Runner] takes a list of [Step]s, each addressing one property of one
// definition in a catalog, and evaluates them in order against a single
// seeded [RNG]. Every evaluation is stamped with a logical seq from a
// [Clock] and optionally appended to a store, so the same seed and steps
// always produce the same log. [Runner.Replay] re-executes a stored run and
// reports the first evaluation that differs.
//
// The runner is single-threaded by design. Dice draws are order dependent:
// two steps evaluated concurrently would consume the RNG in a different
// order on every run.
package engine
