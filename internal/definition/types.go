package definition

import (
	"fmt"

	"github.com/roach88/legends/internal/ir"
)

// Variable names bound by the typed Eval methods.
const (
	VarSubject = "Subject"
	VarObject  = "Object"
)

var (
	subjectOnly      = []string{VarSubject}
	subjectAndObject = []string{VarSubject, VarObject}
)

// Event is a top-level event definition: who it can happen to, which other
// things it involves, and its possible results.
type Event struct {
	Base `yaml:"-" json:"-"`

	DefinitionName       string             `yaml:"definitionName,omitempty" json:"definitionName,omitempty"`
	Chance               string             `yaml:"chance,omitempty" json:"chance,omitempty"`
	ChanceIsComplex      bool               `yaml:"chanceIsComplex,omitempty" json:"chanceIsComplex,omitempty"`
	Subject              *Subject           `yaml:"subject,omitempty" json:"subject,omitempty"`
	Objects              map[string]*Object `yaml:"objects,omitempty" json:"objects,omitempty"`
	Description          string             `yaml:"description,omitempty" json:"description,omitempty"`
	DescriptionIsComplex bool               `yaml:"descriptionIsComplex,omitempty" json:"descriptionIsComplex,omitempty"`
	Results              []*EventResult     `yaml:"results,omitempty" json:"results,omitempty"`
}

var eventSchema = SchemaOf("event",
	[]Property{
		Compiled("Chance", ir.KindInt, func(e *Event) (string, bool) { return e.Chance, e.ChanceIsComplex }, subjectOnly...).WithDefault("100"),
		Formatted("Description", func(e *Event) (string, bool) { return e.Description, e.DescriptionIsComplex }, subjectOnly...),
	},
	// Object keys become variables naming the things bound to them.
	func(e *Event) []string { return sortedKeys(e.Objects) },
	func(e *Event) []Child {
		var kids []Child
		kids = appendChild(kids, "Subject", e.Subject)
		for _, key := range sortedKeys(e.Objects) {
			kids = appendChild(kids, fmt.Sprintf("Objects[%s]", key), e.Objects[key])
		}
		for i, r := range e.Results {
			kids = appendChild(kids, fmt.Sprintf("Results[%d]", i), r)
		}
		return kids
	},
)

func (*Event) Schema() *Schema { return eventSchema }

// TopLevelName is DefinitionName, falling back to the raw description.
func (e *Event) TopLevelName() string {
	if e.DefinitionName != "" {
		return e.DefinitionName
	}
	return e.Description
}

// Subject constrains which things an event can happen to.
type Subject struct {
	Base `yaml:"-" json:"-"`

	Type               string `yaml:"type,omitempty" json:"type,omitempty"`
	Condition          string `yaml:"condition,omitempty" json:"condition,omitempty"`
	ConditionIsComplex bool   `yaml:"conditionIsComplex,omitempty" json:"conditionIsComplex,omitempty"`
}

var subjectSchema = SchemaOf[*Subject]("subject",
	[]Property{
		Compiled("Condition", ir.KindBool, func(s *Subject) (string, bool) { return s.Condition, s.ConditionIsComplex }, subjectOnly...).WithDefault("true"),
	},
	nil, nil,
)

func (*Subject) Schema() *Schema { return subjectSchema }

// Object describes another thing an event involves.
type Object struct {
	Base `yaml:"-" json:"-"`

	Type               string `yaml:"type,omitempty" json:"type,omitempty"`
	Optional           bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Distance           string `yaml:"distance,omitempty" json:"distance,omitempty"`
	DistanceIsComplex  bool   `yaml:"distanceIsComplex,omitempty" json:"distanceIsComplex,omitempty"`
	Condition          string `yaml:"condition,omitempty" json:"condition,omitempty"`
	ConditionIsComplex bool   `yaml:"conditionIsComplex,omitempty" json:"conditionIsComplex,omitempty"`
}

var objectSchema = SchemaOf[*Object]("object",
	[]Property{
		Compiled("Distance", ir.KindInt, func(o *Object) (string, bool) { return o.Distance, o.DistanceIsComplex }, subjectAndObject...).WithDefault("0"),
		Compiled("Condition", ir.KindBool, func(o *Object) (string, bool) { return o.Condition, o.ConditionIsComplex }, subjectAndObject...).WithDefault("true"),
	},
	nil, nil,
)

func (*Object) Schema() *Schema { return objectSchema }

// EventResult is one possible outcome of an event.
type EventResult struct {
	Base `yaml:"-" json:"-"`

	Default            bool      `yaml:"default,omitempty" json:"default,omitempty"`
	Chance             string    `yaml:"chance,omitempty" json:"chance,omitempty"`
	ChanceIsComplex    bool      `yaml:"chanceIsComplex,omitempty" json:"chanceIsComplex,omitempty"`
	Condition          string    `yaml:"condition,omitempty" json:"condition,omitempty"`
	ConditionIsComplex bool      `yaml:"conditionIsComplex,omitempty" json:"conditionIsComplex,omitempty"`
	Effects            []*Effect `yaml:"effects,omitempty" json:"effects,omitempty"`
	Spawns             []*Spawn  `yaml:"spawns,omitempty" json:"spawns,omitempty"`
}

var resultSchema = SchemaOf("result",
	[]Property{
		Compiled("Chance", ir.KindInt, func(r *EventResult) (string, bool) { return r.Chance, r.ChanceIsComplex }, subjectOnly...).WithDefault("100"),
		Compiled("Condition", ir.KindBool, func(r *EventResult) (string, bool) { return r.Condition, r.ConditionIsComplex }, subjectOnly...).WithDefault("true"),
	},
	nil,
	func(r *EventResult) []Child {
		var kids []Child
		for i, e := range r.Effects {
			kids = appendChild(kids, fmt.Sprintf("Effects[%d]", i), e)
		}
		for i, s := range r.Spawns {
			kids = appendChild(kids, fmt.Sprintf("Spawns[%d]", i), s)
		}
		return kids
	},
)

func (*EventResult) Schema() *Schema { return resultSchema }

// Effect changes an attribute of the things it is applied to.
type Effect struct {
	Base `yaml:"-" json:"-"`

	AppliedTo            []string `yaml:"appliedTo,omitempty" json:"appliedTo,omitempty"`
	AffectedAttribute    string   `yaml:"affectedAttribute,omitempty" json:"affectedAttribute,omitempty"`
	Magnitude            string   `yaml:"magnitude,omitempty" json:"magnitude,omitempty"`
	MagnitudeIsComplex   bool     `yaml:"magnitudeIsComplex,omitempty" json:"magnitudeIsComplex,omitempty"`
	Duration             string   `yaml:"duration,omitempty" json:"duration,omitempty"`
	DurationIsComplex    bool     `yaml:"durationIsComplex,omitempty" json:"durationIsComplex,omitempty"`
	Title                string   `yaml:"title,omitempty" json:"title,omitempty"`
	TitleIsComplex       bool     `yaml:"titleIsComplex,omitempty" json:"titleIsComplex,omitempty"`
	Description          string   `yaml:"description,omitempty" json:"description,omitempty"`
	DescriptionIsComplex bool     `yaml:"descriptionIsComplex,omitempty" json:"descriptionIsComplex,omitempty"`
}

var effectSchema = SchemaOf[*Effect]("effect",
	[]Property{
		Compiled("Magnitude", ir.KindInt, func(e *Effect) (string, bool) { return e.Magnitude, e.MagnitudeIsComplex }, subjectOnly...),
		Compiled("Duration", ir.KindInt, func(e *Effect) (string, bool) { return e.Duration, e.DurationIsComplex }, subjectOnly...).WithDefault("-1"),
		Formatted("Title", func(e *Effect) (string, bool) { return e.Title, e.TitleIsComplex }, subjectOnly...).WithDefault("UNDEFINED_TITLE"),
		Formatted("Description", func(e *Effect) (string, bool) { return e.Description, e.DescriptionIsComplex }, subjectOnly...).WithDefault("UNDEFINED_DESCRIPTION"),
	},
	nil, nil,
)

func (*Effect) Schema() *Schema { return effectSchema }

// Targets returns AppliedTo, defaulting to the subject.
func (e *Effect) Targets() []string {
	if len(e.AppliedTo) == 0 {
		return []string{VarSubject}
	}
	return e.AppliedTo
}

// Spawn creates a new thing with computed starting attributes.
type Spawn struct {
	Base `yaml:"-" json:"-"`

	DefinitionNameToSpawn string            `yaml:"definitionNameToSpawn,omitempty" json:"definitionNameToSpawn,omitempty"`
	Attributes            map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	AttributesIsComplex   bool              `yaml:"attributesIsComplex,omitempty" json:"attributesIsComplex,omitempty"`
}

var spawnSchema = SchemaOf[*Spawn]("spawn",
	[]Property{
		Keyed("Attributes", ir.KindInt, func(s *Spawn) (map[string]string, bool) { return s.Attributes, s.AttributesIsComplex }, subjectOnly...),
	},
	nil, nil,
)

func (*Spawn) Schema() *Schema { return spawnSchema }

// Site is a top-level place definition.
type Site struct {
	Base `yaml:"-" json:"-"`

	Name                 string            `yaml:"name,omitempty" json:"name,omitempty"`
	Description          string            `yaml:"description,omitempty" json:"description,omitempty"`
	DescriptionIsComplex bool              `yaml:"descriptionIsComplex,omitempty" json:"descriptionIsComplex,omitempty"`
	Attributes           map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	AttributesIsComplex  bool              `yaml:"attributesIsComplex,omitempty" json:"attributesIsComplex,omitempty"`
	SubSites             *SubSites         `yaml:"subSites,omitempty" json:"subSites,omitempty"`
}

var siteSchema = SchemaOf("site",
	[]Property{
		Formatted("Description", func(s *Site) (string, bool) { return s.Description, s.DescriptionIsComplex }, subjectOnly...),
		Keyed("Attributes", ir.KindInt, func(s *Site) (map[string]string, bool) { return s.Attributes, s.AttributesIsComplex }, subjectOnly...),
	},
	nil,
	func(s *Site) []Child {
		return appendChild(nil, "SubSites", s.SubSites)
	},
)

func (*Site) Schema() *Schema { return siteSchema }

func (s *Site) TopLevelName() string { return s.Name }

// SubSites declares that a site can contain other sites.
type SubSites struct {
	Base `yaml:"-" json:"-"`

	MaximumSubSites          string `yaml:"maximumSubSites,omitempty" json:"maximumSubSites,omitempty"`
	MaximumSubSitesIsComplex bool   `yaml:"maximumSubSitesIsComplex,omitempty" json:"maximumSubSitesIsComplex,omitempty"`
}

var subSitesSchema = SchemaOf[*SubSites]("subsites",
	[]Property{
		Compiled("MaximumSubSites", ir.KindInt, func(s *SubSites) (string, bool) { return s.MaximumSubSites, s.MaximumSubSitesIsComplex }, subjectOnly...).WithDefault("0"),
	},
	nil, nil,
)

func (*SubSites) Schema() *Schema { return subSitesSchema }
