// Package store provides SQLite-backed storage for evaluation logs.
//
// A run is one seeded pass over a list of steps. Every step appends one
// evaluation row recording what was evaluated, with which bindings, and
// what came out:
//   - runs: id (UUIDv7), seed, engine and language versions
//   - evaluations: (run_id, seq) keyed, bindings and value as canonical JSON
//
// Ordering is by the logical seq stamped by the runner, never by time, so a
// replay of the same run reads back in the same order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// Bindings and values are serialized with ir.MarshalCanonical (RFC 8785
// ordering, NFC strings) so identical inputs store identical bytes.
package store
