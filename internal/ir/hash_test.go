package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitKeyDeterminism(t *testing.T) {
	k1 := UnitKey("simple", "Subject->Health <= 0", []string{"Subject"}, KindBool)
	k2 := UnitKey("simple", "Subject->Health <= 0", []string{"Subject"}, KindBool)

	assert.Equal(t, k1, k2, "UnitKey must be deterministic")
	assert.Len(t, k1, 64, "SHA-256 hex is 64 characters")
}

func TestUnitKeyParameterOrderIrrelevant(t *testing.T) {
	k1 := UnitKey("simple", "1", []string{"Subject", "Object"}, KindInt)
	k2 := UnitKey("simple", "1", []string{"Object", "Subject"}, KindInt)
	assert.Equal(t, k1, k2)
}

func TestUnitKeyChangesWithInput(t *testing.T) {
	base := UnitKey("simple", "Subject->Health", []string{"Subject"}, KindInt)

	assert.NotEqual(t, base, UnitKey("complex", "Subject->Health", []string{"Subject"}, KindInt), "mode")
	assert.NotEqual(t, base, UnitKey("simple", "Subject->Fear", []string{"Subject"}, KindInt), "source")
	assert.NotEqual(t, base, UnitKey("simple", "Subject->Health", []string{"Subject", "Object"}, KindInt), "scope")
	assert.NotEqual(t, base, UnitKey("simple", "Subject->Health", []string{"Subject"}, KindBool), "result kind")
}

func TestBindingsHash(t *testing.T) {
	b1 := Bindings{"Subject": NewThing("Hero", map[string]int64{"Health": 5})}
	b2 := Bindings{"Subject": NewThing("Hero", map[string]int64{"Health": 5})}
	b3 := Bindings{"Subject": NewThing("Hero", map[string]int64{"Health": 6})}

	h1, err := BindingsHash(b1)
	require.NoError(t, err)
	assert.Equal(t, h1, MustBindingsHash(b2))
	assert.NotEqual(t, h1, MustBindingsHash(b3))
}
