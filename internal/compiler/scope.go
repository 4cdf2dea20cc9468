package compiler

import (
	"fmt"
	"slices"
)

// Scope is the ordered set of thing-valued parameter names one expression
// may reference. The zero value is an empty scope.
type Scope struct {
	names []string
}

// ScopeLevels are the sources a scope is composed from, in shadowing order:
// a name in an earlier level hides the same name in every later level.
type ScopeLevels struct {
	Fixed     []string // variables declared by the hosting property
	Property  []string // property-specific additional parameters
	Class     []string // class-wide additional parameters of the hosting type
	Inherited []string // combined additional parameters of the upstream chain
}

// NewScope builds a scope from plain names. Duplicates are an error.
func NewScope(names ...string) (Scope, error) {
	return BuildScope(ScopeLevels{Fixed: names})
}

// MustScope is NewScope for literal names in tests and tables.
func MustScope(names ...string) Scope {
	s, err := NewScope(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// BuildScope composes a scope from its levels. A name repeated within one
// level is a DUPLICATE_PARAMETER error; a name repeated across levels keeps
// its first position.
func BuildScope(levels ScopeLevels) (Scope, error) {
	seen := make(map[string]bool)
	var names []string
	for _, level := range []struct {
		label string
		names []string
	}{
		{"fixed variables", levels.Fixed},
		{"property parameters", levels.Property},
		{"class parameters", levels.Class},
		{"inherited parameters", levels.Inherited},
	} {
		local := make(map[string]bool, len(level.names))
		for _, name := range level.names {
			if local[name] {
				return Scope{}, &BindError{
					Code:    ErrCodeDuplicateParameter,
					Message: fmt.Sprintf("%s declare %q more than once", level.label, name),
				}
			}
			local[name] = true
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return Scope{names: names}, nil
}

// Names returns the parameter names in declaration order.
func (s Scope) Names() []string {
	return slices.Clone(s.names)
}

// Contains reports whether name is a parameter of s.
func (s Scope) Contains(name string) bool {
	return slices.Contains(s.names, name)
}

// Len returns the number of parameters.
func (s Scope) Len() int { return len(s.names) }
