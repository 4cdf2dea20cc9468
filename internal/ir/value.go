package ir

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Kind identifies the static type of a value or expression.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindBool
	KindString
	KindThing
)

// String returns the lower-case kind name used in diagnostics and storage.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindThing:
		return "thing"
	default:
		return "invalid"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int":
		return KindInt, nil
	case "bool":
		return KindBool, nil
	case "string":
		return KindString, nil
	case "thing":
		return KindThing, nil
	default:
		return KindInvalid, fmt.Errorf("unknown kind %q", s)
	}
}

// Value is a sealed interface over the runtime values an expression can
// produce or reference. Only Int, Bool, String and *Thing implement it.
type Value interface {
	Kind() Kind
	value() // Sealed
}

// Int is a 64-bit integer value. All arithmetic is integer arithmetic.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) value()     {}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

// String is a string value.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// Thing is an entity with an open-ended bag of numeric attributes. It is the
// target of member dereference (Subject->Health).
type Thing struct {
	Name       string
	Attributes map[string]int64
}

func (*Thing) Kind() Kind { return KindThing }
func (*Thing) value()     {}

// NewThing creates a thing with a copy of attrs.
func NewThing(name string, attrs map[string]int64) *Thing {
	t := &Thing{Name: name, Attributes: make(map[string]int64, len(attrs))}
	for k, v := range attrs {
		t.Attributes[k] = v
	}
	return t
}

// Attribute returns the named attribute and whether it is present.
// A nil thing has no attributes.
func (t *Thing) Attribute(name string) (int64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.Attributes[name]
	return v, ok
}

// SortedAttributes returns attribute names in canonical order.
func (t *Thing) SortedAttributes() []string {
	keys := make([]string, 0, len(t.Attributes))
	for k := range t.Attributes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Format renders a value with a fixed, locale-invariant format: integers in
// base 10, booleans as true/false, strings verbatim and things by name.
func Format(v Value) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		return strconv.FormatBool(bool(val))
	case String:
		return string(val)
	case *Thing:
		if val == nil {
			return ""
		}
		return val.Name
	default:
		return ""
	}
}

// Bindings maps variable names to the concrete values supplied at
// evaluation time.
type Bindings map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (b Bindings) SortedKeys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// With returns a new Bindings holding b overlaid with other.
// Entries in other take precedence.
func (b Bindings) With(other Bindings) Bindings {
	merged := make(Bindings, len(b)+len(other))
	for k, v := range b {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Lookup returns the value bound to name. A nil *Thing counts as unbound.
func (b Bindings) Lookup(name string) (Value, bool) {
	v, ok := b[name]
	if !ok || v == nil {
		return nil, false
	}
	if t, isThing := v.(*Thing); isThing && t == nil {
		return nil, false
	}
	return v, true
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// FromAny converts a decoded scalar (JSON, YAML or CUE) into a Value.
// Floats are accepted only when integral.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case uint64:
		return Int(int64(val)), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("non-integral number %v: only integers are supported", val)
		}
		return Int(int64(val)), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case nil:
		return nil, fmt.Errorf("null is not a value")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
