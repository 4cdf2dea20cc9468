package loader

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"gopkg.in/yaml.v3"
)

type nodeKind int

const (
	kindOther nodeKind = iota
	kindStruct
	kindList
	kindString
	kindInt
	kindBool
)

func (k nodeKind) String() string {
	switch k {
	case kindStruct:
		return "struct"
	case kindList:
		return "list"
	case kindString:
		return "string"
	case kindInt:
		return "int"
	case kindBool:
		return "bool"
	default:
		return "value"
	}
}

// node is the read-only view of a pack document shared by CUE values and
// YAML nodes.
type node interface {
	Pos() Pos
	Kind() nodeKind
	// Fields returns struct fields in source order.
	Fields() ([]field, error)
	Items() ([]node, error)
	// Scalar returns the text of a string, int or bool.
	Scalar() (string, error)
	Bool() (bool, error)
}

type field struct {
	Name  string
	Value node
}

// cueNode adapts a cue.Value.
type cueNode struct{ v cue.Value }

func (n cueNode) Pos() Pos { return fromToken(n.v.Pos()) }

func (n cueNode) Kind() nodeKind {
	switch n.v.IncompleteKind() {
	case cue.StructKind:
		return kindStruct
	case cue.ListKind:
		return kindList
	case cue.StringKind:
		return kindString
	case cue.IntKind:
		return kindInt
	case cue.BoolKind:
		return kindBool
	default:
		return kindOther
	}
}

func (n cueNode) Fields() ([]field, error) {
	iter, err := n.v.Fields()
	if err != nil {
		return nil, formatCUEError("fields", err)
	}
	var fields []field
	for iter.Next() {
		fields = append(fields, field{Name: iter.Selector().Unquoted(), Value: cueNode{iter.Value()}})
	}
	return fields, nil
}

func (n cueNode) Items() ([]node, error) {
	iter, err := n.v.List()
	if err != nil {
		return nil, formatCUEError("list", err)
	}
	var items []node
	for iter.Next() {
		items = append(items, cueNode{iter.Value()})
	}
	return items, nil
}

func (n cueNode) Scalar() (string, error) {
	switch n.Kind() {
	case kindString:
		s, err := n.v.String()
		if err != nil {
			return "", formatCUEError("string", err)
		}
		return s, nil
	case kindInt:
		i, err := n.v.Int64()
		if err != nil {
			return "", formatCUEError("int", err)
		}
		return strconv.FormatInt(i, 10), nil
	case kindBool:
		b, err := n.v.Bool()
		if err != nil {
			return "", formatCUEError("bool", err)
		}
		return strconv.FormatBool(b), nil
	default:
		return "", fmt.Errorf("expected string, got %s", n.v.IncompleteKind())
	}
}

func (n cueNode) Bool() (bool, error) {
	b, err := n.v.Bool()
	if err != nil {
		return false, formatCUEError("bool", err)
	}
	return b, nil
}

// yamlNode adapts a yaml.Node. Aliases are resolved on construction.
type yamlNode struct {
	n    *yaml.Node
	file string
}

func newYAMLNode(n *yaml.Node, file string) yamlNode {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return newYAMLNode(n.Content[0], file)
	}
	return yamlNode{n: n, file: file}
}

func (n yamlNode) Pos() Pos { return Pos{File: n.file, Line: n.n.Line, Column: n.n.Column} }

func (n yamlNode) Kind() nodeKind {
	switch n.n.Kind {
	case yaml.MappingNode:
		return kindStruct
	case yaml.SequenceNode:
		return kindList
	case yaml.ScalarNode:
		switch n.n.Tag {
		case "!!str":
			return kindString
		case "!!int":
			return kindInt
		case "!!bool":
			return kindBool
		}
	}
	return kindOther
}

func (n yamlNode) Fields() ([]field, error) {
	if n.n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping, got %s", n.Kind())
	}
	fields := make([]field, 0, len(n.n.Content)/2)
	for i := 0; i+1 < len(n.n.Content); i += 2 {
		fields = append(fields, field{
			Name:  n.n.Content[i].Value,
			Value: newYAMLNode(n.n.Content[i+1], n.file),
		})
	}
	return fields, nil
}

func (n yamlNode) Items() ([]node, error) {
	if n.n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected sequence, got %s", n.Kind())
	}
	items := make([]node, len(n.n.Content))
	for i, c := range n.n.Content {
		items[i] = newYAMLNode(c, n.file)
	}
	return items, nil
}

func (n yamlNode) Scalar() (string, error) {
	switch n.Kind() {
	case kindString, kindInt, kindBool:
		return n.n.Value, nil
	default:
		return "", fmt.Errorf("expected string, got %s", n.Kind())
	}
}

func (n yamlNode) Bool() (bool, error) {
	var b bool
	if err := n.n.Decode(&b); err != nil {
		return false, err
	}
	return b, nil
}
