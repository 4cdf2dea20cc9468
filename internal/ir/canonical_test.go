package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"no html escape", String("<a&b>"), `"<a&b>"`},
		{"thing", NewThing("Hero", map[string]int64{"Health": 5, "Fear": 23}),
			`{"attributes":{"Fear":23,"Health":5},"name":"Hero"}`},
		{"empty bindings", Bindings{}, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalRejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	var th *Thing
	_, err = MarshalCanonical(th)
	assert.Error(t, err)
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed := String("cafe\u0301")
	precomposed := String("caf\u00e9")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	out, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(out))

	out, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(out))
}

func TestUnmarshalValueRoundTrip(t *testing.T) {
	values := []Value{Int(-7), Bool(true), String("x"), NewThing("Hero", map[string]int64{"Health": 5})}
	for _, v := range values {
		data, err := MarshalCanonical(v)
		require.NoError(t, err)
		back, err := UnmarshalValue(v.Kind(), data)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}

func TestUnmarshalBindings(t *testing.T) {
	b := Bindings{
		"Subject": NewThing("Hero", map[string]int64{"Health": 5}),
		"Label":   String("north"),
		"Turn":    Int(3),
		"Night":   Bool(false),
	}
	data, err := MarshalCanonical(b)
	require.NoError(t, err)

	back, err := UnmarshalBindings(data)
	require.NoError(t, err)
	assert.Equal(t, b, back)
}
