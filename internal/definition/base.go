package definition

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/ir"
)

// State is the lifecycle state of one definition node.
type State int32

const (
	StateUnattached State = iota
	StateAttached
	StateCompiled
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateAttached:
		return "attached"
	case StateCompiled:
		return "compiled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Handle is an immutable snapshot of an upstream definition taken at
// Attach. Children hold a Handle rather than a pointer to their parent;
// the parent owns its children and nothing points back up.
type Handle struct {
	Kind string
	Path string
	// Combined is the upstream's class-wide additional parameters followed
	// by everything it inherited, without duplicates.
	Combined []string
}

// Base carries the attach state shared by every definition type. Embed it
// by value; the zero value is StateUnattached.
type Base struct {
	compiler *compiler.Compiler
	upstream *Handle
	path     string
	state    State
	units    map[string]*compiler.Deferred
	keyed    map[string]map[string]*compiler.Deferred
}

func (b *Base) definitionBase() *Base { return b }

// State returns the lifecycle state.
func (b *Base) State() State { return b.state }

// Path returns the address assigned at Attach, e.g. event:Ambush/Results[0].
func (b *Base) Path() string { return b.path }

// Upstream returns the snapshot of the parent taken at Attach, or nil for
// a root or unattached definition.
func (b *Base) Upstream() *Handle { return b.upstream }

// Compiler returns the compiler recorded at Attach.
func (b *Base) Compiler() *compiler.Compiler { return b.compiler }

// Attach links d and its subtree to c. upstream is nil for a root. Calling
// Attach again rebuilds every binding from the tree's current contents and
// returns the subtree to the attached state.
func Attach(d Definition, c *compiler.Compiler, upstream *Handle) error {
	path := d.Schema().Kind
	if upstream != nil {
		path = upstream.Path + "/" + path
	}
	if top, ok := d.(TopLevel); ok && upstream == nil {
		path = d.Schema().Kind + ":" + top.TopLevelName()
	}
	return attach(d, c, upstream, path, make(map[Definition]bool))
}

func attach(d Definition, c *compiler.Compiler, upstream *Handle, path string, onPath map[Definition]bool) error {
	if onPath[d] {
		return &ProtocolError{Code: ErrCodeCycle, Path: path, Message: "definition is its own ancestor"}
	}
	onPath[d] = true
	defer delete(onPath, d)

	schema := d.Schema()
	b := d.definitionBase()
	b.compiler = c
	b.upstream = upstream
	b.path = path
	b.state = StateAttached
	b.units = make(map[string]*compiler.Deferred)
	b.keyed = make(map[string]map[string]*compiler.Deferred)

	for _, p := range schema.Properties {
		scope, scopeErr := scopeFor(d, p, upstream)
		if p.Keyed {
			sources, isComplex := p.Sources(d)
			units := make(map[string]*compiler.Deferred, len(sources))
			for key, src := range sources {
				units[key] = deferUnit(c, p, src, isComplex, scope, scopeErr)
			}
			b.keyed[p.Name] = units
			continue
		}
		src, isComplex := p.Source(d)
		b.units[p.Name] = deferUnit(c, p, src, isComplex, scope, scopeErr)
	}

	c.Logger().Debug("attached definition", "path", path, "properties", len(schema.Properties))

	self := &Handle{Kind: schema.Kind, Path: path, Combined: combined(d, upstream)}
	for _, child := range schema.Children(d) {
		if err := attach(child.Def, c, self, path+"/"+child.Segment, onPath); err != nil {
			return err
		}
	}
	return nil
}

func deferUnit(c *compiler.Compiler, p Property, src string, isComplex bool, scope compiler.Scope, scopeErr error) *compiler.Deferred {
	if scopeErr != nil {
		return compiler.Defer(func() (*compiler.Unit, error) { return nil, scopeErr })
	}
	return compiler.DeferCompile(c, p.Mode(isComplex), src, scope, p.Result)
}

// scopeFor composes the parameter scope of p on d.
func scopeFor(d Definition, p Property, upstream *Handle) (compiler.Scope, error) {
	levels := compiler.ScopeLevels{
		Fixed:    p.Variables,
		Property: p.Additional(d),
		Class:    d.Schema().ClassParameters(d),
	}
	if upstream != nil {
		levels.Inherited = upstream.Combined
	}
	return compiler.BuildScope(levels)
}

// combined returns d's class-wide parameters followed by those inherited
// from upstream, first occurrence wins.
func combined(d Definition, upstream *Handle) []string {
	out := slices.Clone(d.Schema().ClassParameters(d))
	if upstream != nil {
		out = append(out, upstream.Combined...)
	}
	seen := make(map[string]bool, len(out))
	return slices.DeleteFunc(out, func(name string) bool {
		if seen[name] {
			return true
		}
		seen[name] = true
		return false
	})
}

// CombinedParameters returns the class-wide additional parameters of d plus
// everything inherited through its upstream chain as of the last Attach.
func CombinedParameters(d Definition) []string {
	return combined(d, d.definitionBase().upstream)
}

// Compile realizes every deferred unit on d, then compiles its children in
// order. All of d's own properties are realized even when one fails, and
// their errors are joined; a failure stops the recursion before children.
func Compile(d Definition) error {
	b := d.definitionBase()
	if b.state == StateUnattached {
		return &ProtocolError{Code: ErrCodeNotAttached, Path: d.Schema().Kind, Message: "compile before attach"}
	}

	var errs []error
	for _, p := range d.Schema().Properties {
		if p.Keyed {
			units := b.keyed[p.Name]
			for _, key := range sortedKeys(units) {
				if _, err := units[key].Realize(); err != nil {
					errs = append(errs, &PropertyError{Path: b.path, Property: p.Name, Key: key, Err: err})
				}
			}
			continue
		}
		if _, err := b.units[p.Name].Realize(); err != nil {
			errs = append(errs, &PropertyError{Path: b.path, Property: p.Name, Err: err})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	b.state = StateCompiled
	b.compiler.Logger().Debug("compiled definition", "path", b.path)

	for _, child := range d.Schema().Children(d) {
		if err := Compile(child.Def); err != nil {
			return err
		}
	}
	return nil
}

// Parameters returns the ordered parameter names the property's expression
// may reference. It does not compile. Inherited names reflect the last
// Attach; class-wide names are read from d's current contents.
func Parameters(d Definition, prop string) ([]string, error) {
	p, ok := d.Schema().Property(prop)
	if !ok {
		return nil, unknownProperty(d, prop)
	}
	scope, err := scopeFor(d, p, d.definitionBase().upstream)
	if err != nil {
		return nil, err
	}
	return scope.Names(), nil
}

// Keys returns the sorted keys of a keyed property as of the last Attach.
func Keys(d Definition, prop string) ([]string, error) {
	p, ok := d.Schema().Property(prop)
	if !ok || !p.Keyed {
		return nil, unknownProperty(d, prop)
	}
	return sortedKeys(d.definitionBase().keyed[prop]), nil
}

// Evaluate runs a compiled property. key addresses an entry of a keyed
// property and must be empty otherwise. d must be compiled.
func Evaluate(d Definition, prop, key string, rng compiler.Rand, bindings ir.Bindings) (ir.Value, error) {
	u, err := unitFor(d, prop, key)
	if err != nil {
		return nil, err
	}
	v, err := u.Evaluate(rng, bindings)
	if err != nil {
		return nil, &PropertyError{Path: d.definitionBase().path, Property: prop, Key: key, Err: err}
	}
	return v, nil
}

func evaluateAs[T compiler.Result](d Definition, prop, key string, rng compiler.Rand, bindings ir.Bindings) (T, error) {
	var zero T
	u, err := unitFor(d, prop, key)
	if err != nil {
		return zero, err
	}
	cond, err := compiler.NewCondition[T](u)
	if err != nil {
		return zero, err
	}
	v, err := cond.Evaluate(rng, bindings)
	if err != nil {
		return zero, &PropertyError{Path: d.definitionBase().path, Property: prop, Key: key, Err: err}
	}
	return v, nil
}

func unitFor(d Definition, prop, key string) (*compiler.Unit, error) {
	b := d.definitionBase()
	switch b.state {
	case StateUnattached:
		return nil, &ProtocolError{Code: ErrCodeNotAttached, Path: d.Schema().Kind, Property: prop,
			Message: "definition must be attached and compiled before evaluation"}
	case StateAttached:
		return nil, &ProtocolError{Code: ErrCodeNotCompiled, Path: b.path, Property: prop,
			Message: "definition must be compiled before evaluation"}
	}

	p, ok := d.Schema().Property(prop)
	if !ok {
		return nil, unknownProperty(d, prop)
	}
	var deferred *compiler.Deferred
	if p.Keyed {
		deferred = b.keyed[prop][key]
	} else if key == "" {
		deferred = b.units[prop]
	}
	if deferred == nil {
		return nil, &ProtocolError{Code: ErrCodeUnknownKey, Path: b.path, Property: prop, Key: key,
			Message: "no such key"}
	}
	u := deferred.Unit()
	if u == nil {
		return nil, &ProtocolError{Code: ErrCodeNotCompiled, Path: b.path, Property: prop, Key: key,
			Message: "property failed to compile"}
	}
	return u, nil
}

func unknownProperty(d Definition, prop string) error {
	return &ProtocolError{Code: ErrCodeUnknownProperty, Path: d.definitionBase().path, Property: prop,
		Message: fmt.Sprintf("%s has no compiled property %q", d.Schema().Kind, prop)}
}

// bindThings overlays the fixed variables onto the caller's additional
// parameters. A nil thing is left unbound.
func bindThings(additional ir.Bindings, names []string, things ...*ir.Thing) ir.Bindings {
	fixed := make(ir.Bindings, len(names))
	for i, name := range names {
		if i < len(things) && things[i] != nil {
			fixed[name] = things[i]
		}
	}
	return additional.With(fixed)
}
