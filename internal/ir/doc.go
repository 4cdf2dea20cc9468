// Package ir provides the value model shared by the legends compiler,
// definitions, engine and store.
//
// This package contains value types and their canonical encoding only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - attributes and arithmetic use int64
//   - Things are supplied at evaluation time and never retained by compiled units
//   - Canonical JSON (RFC 8785 key order, NFC strings) for every hashed or stored value
package ir
