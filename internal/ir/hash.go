package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainUnit     = "legends/unit/v1"
	DomainBindings = "legends/bindings/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// UnitKey computes the cache identity of a compiled unit. Two units share a
// key only when the compile mode, the NFC-normalized source text, the set of
// parameter names and the expected result kind are all identical. Parameter
// order does not matter; the set does.
func UnitKey(mode, source string, params []string, result Kind) string {
	names := slices.Clone(params)
	slices.Sort(names)
	names = slices.Compact(names)

	arr := make([]any, len(names))
	for i, n := range names {
		arr[i] = n
	}

	canonical, err := MarshalCanonical(map[string]any{
		"mode":   mode,
		"source": norm.NFC.String(source),
		"params": arr,
		"result": result.String(),
	})
	if err != nil {
		// Only strings are marshaled above; this cannot fail.
		panic(fmt.Sprintf("UnitKey: %v", err))
	}
	return hashWithDomain(DomainUnit, canonical)
}

// BindingsHash computes a stable hash of evaluation bindings.
// Returns error if bindings cannot be canonically marshaled.
func BindingsHash(b Bindings) (string, error) {
	canonical, err := MarshalCanonical(b)
	if err != nil {
		return "", fmt.Errorf("BindingsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBindings, canonical), nil
}

// MustBindingsHash is like BindingsHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBindingsHash(b Bindings) string {
	h, err := BindingsHash(b)
	if err != nil {
		panic(err)
	}
	return h
}
