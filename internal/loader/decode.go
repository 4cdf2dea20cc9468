package loader

import (
	"fmt"
	"strings"

	"github.com/roach88/legends/internal/definition"
)

// SourceMap records where each definition and property was authored.
// Keys use the addresses Attach assigns: a definition path such as
// event:Ambush/Results[0], a property such as event:Ambush.Chance, or a
// keyed entry such as site:Keep.Attributes[Walls].
type SourceMap map[string]Pos

// Lookup returns the most specific recorded position for a property of the
// definition at path, falling back to the property, the definition, and
// then each ancestor.
func (m SourceMap) Lookup(path, property, key string) (Pos, bool) {
	if property != "" {
		if key != "" {
			if p, ok := m[fmt.Sprintf("%s.%s[%s]", path, property, key)]; ok {
				return p, true
			}
		}
		if p, ok := m[path+"."+property]; ok {
			return p, true
		}
	}
	for path != "" {
		if p, ok := m[path]; ok {
			return p, true
		}
		i := strings.LastIndexByte(path, '/')
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return Pos{}, false
}

type decoder struct {
	sources SourceMap
	errs    []error
}

func newDecoder() *decoder {
	return &decoder{sources: SourceMap{}}
}

func (d *decoder) fail(code, field, msg string, pos Pos) {
	d.errs = append(d.errs, ValidationError{Field: field, Message: msg, Code: code, Pos: pos})
}

// object reads the fields of one definition struct. Every field must be
// consumed before close, or it is reported as unknown.
type object struct {
	d      *decoder
	path   string
	fields []field
	used   map[string]bool
}

func (d *decoder) object(n node, path string) *object {
	o := &object{d: d, path: path, used: map[string]bool{}}
	d.sources[path] = n.Pos()
	if n.Kind() != kindStruct {
		d.fail(ErrWrongType, path, fmt.Sprintf("expected struct, got %s", n.Kind()), n.Pos())
		return o
	}
	fields, err := n.Fields()
	if err != nil {
		d.fail(ErrWrongType, path, err.Error(), n.Pos())
		return o
	}
	o.fields = fields
	return o
}

func (o *object) get(name string) (node, bool) {
	for _, f := range o.fields {
		if f.Name == name {
			o.used[name] = true
			return f.Value, true
		}
	}
	return nil, false
}

func (o *object) field(name string) string { return o.path + "." + name }

// expr reads expression source for prop.
func (o *object) expr(name, prop string, dst *string) {
	n, ok := o.get(name)
	if !ok {
		return
	}
	s, err := n.Scalar()
	if err != nil {
		o.d.fail(ErrWrongType, o.field(name), err.Error(), n.Pos())
		return
	}
	*dst = s
	o.d.sources[o.path+"."+prop] = n.Pos()
}

// text reads a plain string.
func (o *object) text(name string, dst *string) {
	n, ok := o.get(name)
	if !ok {
		return
	}
	if n.Kind() != kindString {
		o.d.fail(ErrWrongType, o.field(name), fmt.Sprintf("expected string, got %s", n.Kind()), n.Pos())
		return
	}
	s, err := n.Scalar()
	if err != nil {
		o.d.fail(ErrWrongType, o.field(name), err.Error(), n.Pos())
		return
	}
	*dst = s
}

func (o *object) flag(name string, dst *bool) {
	n, ok := o.get(name)
	if !ok {
		return
	}
	if n.Kind() != kindBool {
		o.d.fail(ErrWrongType, o.field(name), fmt.Sprintf("expected bool, got %s", n.Kind()), n.Pos())
		return
	}
	b, err := n.Bool()
	if err != nil {
		o.d.fail(ErrWrongType, o.field(name), err.Error(), n.Pos())
		return
	}
	*dst = b
}

// strings reads a list of strings. A single string is a list of one.
func (o *object) strings(name string) []string {
	n, ok := o.get(name)
	if !ok {
		return nil
	}
	if n.Kind() == kindString {
		s, _ := n.Scalar()
		return []string{s}
	}
	items, err := n.Items()
	if err != nil {
		o.d.fail(ErrWrongType, o.field(name), err.Error(), n.Pos())
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		if item.Kind() != kindString {
			o.d.fail(ErrWrongType, fmt.Sprintf("%s[%d]", o.field(name), i), fmt.Sprintf("expected string, got %s", item.Kind()), item.Pos())
			continue
		}
		s, _ := item.Scalar()
		out = append(out, s)
	}
	return out
}

// members returns the fields of a nested struct such as objects.
func (o *object) members(name string) []field {
	n, ok := o.get(name)
	if !ok {
		return nil
	}
	if n.Kind() != kindStruct {
		o.d.fail(ErrWrongType, o.field(name), fmt.Sprintf("expected struct, got %s", n.Kind()), n.Pos())
		return nil
	}
	fields, err := n.Fields()
	if err != nil {
		o.d.fail(ErrWrongType, o.field(name), err.Error(), n.Pos())
		return nil
	}
	return fields
}

// items returns the elements of a nested list such as results.
func (o *object) items(name string) []node {
	n, ok := o.get(name)
	if !ok {
		return nil
	}
	items, err := n.Items()
	if err != nil {
		o.d.fail(ErrWrongType, o.field(name), err.Error(), n.Pos())
		return nil
	}
	return items
}

// exprMap reads a keyed property such as attributes.
func (o *object) exprMap(name, prop string) map[string]string {
	fields := o.members(name)
	if fields == nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		s, err := f.Value.Scalar()
		if err != nil {
			o.d.fail(ErrWrongType, fmt.Sprintf("%s.%s", o.field(name), f.Name), err.Error(), f.Value.Pos())
			continue
		}
		out[f.Name] = s
		o.d.sources[fmt.Sprintf("%s.%s[%s]", o.path, prop, f.Name)] = f.Value.Pos()
	}
	return out
}

func (o *object) close() {
	for _, f := range o.fields {
		if !o.used[f.Name] {
			o.d.fail(ErrUnknownField, o.field(f.Name), "unknown field", f.Value.Pos())
		}
	}
}

func (d *decoder) event(n node, label string) *definition.Event {
	path := "event:" + label
	o := d.object(n, path)
	e := &definition.Event{}

	o.text("definitionName", &e.DefinitionName)
	if e.DefinitionName != "" && e.DefinitionName != label {
		d.fail(ErrNameMismatch, o.field("definitionName"),
			fmt.Sprintf("definitionName %q does not match label %q", e.DefinitionName, label), d.sources[path])
	}
	e.DefinitionName = label

	o.expr("chance", "Chance", &e.Chance)
	o.flag("chanceIsComplex", &e.ChanceIsComplex)
	o.expr("description", "Description", &e.Description)
	o.flag("descriptionIsComplex", &e.DescriptionIsComplex)

	if sn, ok := o.get("subject"); ok {
		e.Subject = d.subject(sn, path+"/Subject")
	}
	if members := o.members("objects"); members != nil {
		e.Objects = make(map[string]*definition.Object, len(members))
		for _, f := range members {
			e.Objects[f.Name] = d.eventObject(f.Value, fmt.Sprintf("%s/Objects[%s]", path, f.Name))
		}
	}
	for i, item := range o.items("results") {
		e.Results = append(e.Results, d.result(item, fmt.Sprintf("%s/Results[%d]", path, i)))
	}
	o.close()
	return e
}

func (d *decoder) subject(n node, path string) *definition.Subject {
	o := d.object(n, path)
	s := &definition.Subject{}
	o.text("type", &s.Type)
	o.expr("condition", "Condition", &s.Condition)
	o.flag("conditionIsComplex", &s.ConditionIsComplex)
	o.close()
	return s
}

func (d *decoder) eventObject(n node, path string) *definition.Object {
	o := d.object(n, path)
	obj := &definition.Object{}
	o.text("type", &obj.Type)
	o.flag("optional", &obj.Optional)
	o.expr("distance", "Distance", &obj.Distance)
	o.flag("distanceIsComplex", &obj.DistanceIsComplex)
	o.expr("condition", "Condition", &obj.Condition)
	o.flag("conditionIsComplex", &obj.ConditionIsComplex)
	o.close()
	return obj
}

func (d *decoder) result(n node, path string) *definition.EventResult {
	o := d.object(n, path)
	r := &definition.EventResult{}
	o.flag("default", &r.Default)
	o.expr("chance", "Chance", &r.Chance)
	o.flag("chanceIsComplex", &r.ChanceIsComplex)
	o.expr("condition", "Condition", &r.Condition)
	o.flag("conditionIsComplex", &r.ConditionIsComplex)
	for i, item := range o.items("effects") {
		r.Effects = append(r.Effects, d.effect(item, fmt.Sprintf("%s/Effects[%d]", path, i)))
	}
	for i, item := range o.items("spawns") {
		r.Spawns = append(r.Spawns, d.spawn(item, fmt.Sprintf("%s/Spawns[%d]", path, i)))
	}
	o.close()
	return r
}

func (d *decoder) effect(n node, path string) *definition.Effect {
	o := d.object(n, path)
	e := &definition.Effect{}
	e.AppliedTo = o.strings("appliedTo")
	o.text("affectedAttribute", &e.AffectedAttribute)
	o.expr("magnitude", "Magnitude", &e.Magnitude)
	o.flag("magnitudeIsComplex", &e.MagnitudeIsComplex)
	o.expr("duration", "Duration", &e.Duration)
	o.flag("durationIsComplex", &e.DurationIsComplex)
	o.expr("title", "Title", &e.Title)
	o.flag("titleIsComplex", &e.TitleIsComplex)
	o.expr("description", "Description", &e.Description)
	o.flag("descriptionIsComplex", &e.DescriptionIsComplex)
	o.close()
	return e
}

func (d *decoder) spawn(n node, path string) *definition.Spawn {
	o := d.object(n, path)
	s := &definition.Spawn{}
	o.text("definitionNameToSpawn", &s.DefinitionNameToSpawn)
	s.Attributes = o.exprMap("attributes", "Attributes")
	o.flag("attributesIsComplex", &s.AttributesIsComplex)
	o.close()
	return s
}

func (d *decoder) site(n node, label string) *definition.Site {
	path := "site:" + label
	o := d.object(n, path)
	s := &definition.Site{}

	o.text("name", &s.Name)
	if s.Name != "" && s.Name != label {
		d.fail(ErrNameMismatch, o.field("name"),
			fmt.Sprintf("name %q does not match label %q", s.Name, label), d.sources[path])
	}
	s.Name = label

	o.expr("description", "Description", &s.Description)
	o.flag("descriptionIsComplex", &s.DescriptionIsComplex)
	s.Attributes = o.exprMap("attributes", "Attributes")
	o.flag("attributesIsComplex", &s.AttributesIsComplex)
	if sn, ok := o.get("subSites"); ok {
		s.SubSites = d.subSites(sn, path+"/SubSites")
	}
	o.close()
	return s
}

func (d *decoder) subSites(n node, path string) *definition.SubSites {
	o := d.object(n, path)
	s := &definition.SubSites{}
	o.expr("maximumSubSites", "MaximumSubSites", &s.MaximumSubSites)
	o.flag("maximumSubSitesIsComplex", &s.MaximumSubSitesIsComplex)
	o.close()
	return s
}
