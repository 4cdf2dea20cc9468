package definition

import (
	"slices"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/ir"
)

// Definition is implemented by every definition type by embedding Base and
// declaring a Schema.
type Definition interface {
	Schema() *Schema
	definitionBase() *Base
}

// TopLevel is a definition that roots a tree in a Catalog.
type TopLevel interface {
	Definition
	TopLevelName() string
}

// Child is one child definition and the path segment that addresses it.
type Child struct {
	Segment string // "Subject", "Results[0]", "Objects[Bandit]"
	Def     Definition
}

// Property registers one compiled property of a definition type.
type Property struct {
	Name      string
	Result    ir.Kind
	Text      bool     // formatted text rather than a condition
	Variables []string // fixed thing-valued variables, e.g. Subject
	Default   string   // source used when the authored text is empty
	Keyed     bool     // one condition per dictionary key

	source  func(Definition) (string, bool)
	sources func(Definition) (map[string]string, bool)
	extra   func(Definition) []string
}

// Mode returns the compile mode for an authored complex flag.
func (p Property) Mode(isComplex bool) compiler.Mode {
	switch {
	case p.Text:
		return compiler.ModeText
	case isComplex:
		return compiler.ModeComplex
	default:
		return compiler.ModeSimple
	}
}

// Source returns the effective source text and complex flag of a
// non-keyed property.
func (p Property) Source(d Definition) (string, bool) {
	src, isComplex := p.source(d)
	if src == "" {
		src = p.Default
	}
	return src, isComplex
}

// Sources returns the keyed property's sources and complex flag.
func (p Property) Sources(d Definition) (map[string]string, bool) {
	return p.sources(d)
}

// Additional returns the property-specific additional parameters.
func (p Property) Additional(d Definition) []string {
	if p.extra == nil {
		return nil
	}
	return p.extra(d)
}

// Compiled registers a condition property of definition type D.
func Compiled[D Definition](name string, result ir.Kind, get func(D) (string, bool), variables ...string) Property {
	return Property{
		Name:      name,
		Result:    result,
		Variables: variables,
		source:    func(d Definition) (string, bool) { return get(d.(D)) },
	}
}

// Formatted registers a formatted-text property of definition type D.
func Formatted[D Definition](name string, get func(D) (string, bool), variables ...string) Property {
	p := Compiled(name, ir.KindString, get, variables...)
	p.Text = true
	return p
}

// Keyed registers a dictionary of conditions of definition type D.
func Keyed[D Definition](name string, result ir.Kind, get func(D) (map[string]string, bool), variables ...string) Property {
	return Property{
		Name:      name,
		Result:    result,
		Variables: variables,
		Keyed:     true,
		sources:   func(d Definition) (map[string]string, bool) { return get(d.(D)) },
	}
}

// WithDefault sets the source used when the authored text is empty.
func (p Property) WithDefault(src string) Property {
	p.Default = src
	return p
}

// WithAdditional declares property-specific additional parameters.
func WithAdditional[D Definition](p Property, extra func(D) []string) Property {
	p.extra = func(d Definition) []string { return extra(d.(D)) }
	return p
}

// Schema is the registration table of one definition type.
type Schema struct {
	Kind       string
	Properties []Property

	class    func(Definition) []string
	children func(Definition) []Child
}

// SchemaOf builds a schema for definition type D. class returns the
// class-wide additional parameters and children the child definitions in
// address order; either may be nil.
func SchemaOf[D Definition](kind string, props []Property, class func(D) []string, children func(D) []Child) *Schema {
	s := &Schema{Kind: kind, Properties: props}
	if class != nil {
		s.class = func(d Definition) []string { return class(d.(D)) }
	}
	if children != nil {
		s.children = func(d Definition) []Child { return children(d.(D)) }
	}
	return s
}

// Property finds a registered property by name.
func (s *Schema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// ClassParameters returns the class-wide additional parameters of d.
func (s *Schema) ClassParameters(d Definition) []string {
	if s.class == nil {
		return nil
	}
	return s.class(d)
}

// Children returns the children of d in address order.
func (s *Schema) Children(d Definition) []Child {
	if s.children == nil {
		return nil
	}
	return s.children(d)
}

// appendChild appends p unless it is a nil pointer.
func appendChild[T any, P interface {
	*T
	Definition
}](kids []Child, segment string, p P) []Child {
	if p == nil {
		return kids
	}
	return append(kids, Child{Segment: segment, Def: p})
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
