// Package harness runs YAML scenarios against definition packs.
//
// A scenario names the packs to load, a seed, the things to bind, and a
// list of steps. Each step evaluates one property and may state the value
// or error code it expects:
//
//	name: village_day
//	description: "One day in the village"
//	packs:
//	  - ../packs/village
//	seed: 7
//	globals:
//	  Season: 2
//	things:
//	  tom: {name: Tom, attributes: {Health: 4, Strength: 3}}
//	steps:
//	  - path: event:Harvest
//	    property: Chance
//	    bind: {Subject: tom}
//	    expect: 31
//	  - path: site:Market
//	    property: Attributes
//	    key: Wells
//	    bind: {Subject: tom}
//	    expect_error: UNKNOWN_KEY
//	assertions:
//	  - type: trace_count
//	    code: UNKNOWN_KEY
//	    count: 1
//
// Pack paths are relative to the scenario file. A bind or global value that
// names an entry of things binds that thing; any other string, int or bool
// binds the scalar.
//
// # Assertion Types
//
//   - trace_contains: an evaluation matching path, property, key, code and,
//     if given, value
//   - trace_order: targets (path.Property or path.Property[key]) first
//     evaluated in the given order
//   - trace_count: exactly count evaluations match the filters
//   - final_state: one row of the runs or evaluations table matches
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID (run_id, or "test-run-default"),
// a logical clock starting at zero, and an in-memory SQLite store, so the
// trace is identical across runs and can be compared with a golden file
// (see RunWithGolden). After the steps run, the recorded run is replayed
// from its seed; a divergence fails the scenario.
package harness
