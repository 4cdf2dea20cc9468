package testutil

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/ir"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewCompiler returns a quiet compiler for tests.
func NewCompiler(opts ...compiler.Option) *compiler.Compiler {
	return compiler.New(append([]compiler.Option{compiler.WithLogger(DiscardLogger())}, opts...)...)
}

// Hero is the subject used across tests: Health 5, Fear 23, Strength 1.
func Hero() *ir.Thing {
	return ir.NewThing("Aldric", map[string]int64{"Health": 5, "Fear": 23, "Strength": 1})
}

// Bandit is the object used across tests: Strength 4, Fear 3.
func Bandit() *ir.Thing {
	return ir.NewThing("Grim", map[string]int64{"Strength": 4, "Fear": 3})
}

// AmbushEvent returns a fresh unattached event exercising every child type
// and a die roll.
func AmbushEvent() *definition.Event {
	return &definition.Event{
		DefinitionName: "Ambush",
		Chance:         "(Subject->Health + Subject->Fear) / 2",
		Subject:        &definition.Subject{Type: "Person", Condition: "Subject->Health > 0"},
		Objects: map[string]*definition.Object{
			"Bandit": {Type: "Person", Distance: "Subject->Fear - Object->Fear"},
		},
		Description: "{Subject} is ambushed by {Bandit}",
		Results: []*definition.EventResult{
			{
				Default:   true,
				Chance:    "Random->Percent",
				Condition: "Bandit->Strength > Subject->Strength",
				Effects: []*definition.Effect{
					{
						AffectedAttribute: "Health",
						Magnitude:         "-Random->D6",
						Title:             "{Subject} is wounded",
					},
				},
			},
		},
	}
}

// KeepSite returns a fresh unattached site with keyed attributes.
func KeepSite() *definition.Site {
	return &definition.Site{
		Name:        "Keep",
		Description: "{Subject} stands in the keep",
		Attributes:  map[string]string{"Walls": "Subject->Strength * 10", "Gold": "Random->D20"},
		SubSites:    &definition.SubSites{MaximumSubSites: "Subject->Strength + 2"},
	}
}

// Catalog returns a catalog holding AmbushEvent and KeepSite, attached and
// compiled with c. Panics on failure; the fixtures are known good.
func Catalog(c *compiler.Compiler) *definition.Catalog {
	cat := definition.NewCatalog()
	if err := cat.AddEvent(AmbushEvent()); err != nil {
		panic(err)
	}
	if err := cat.AddSite(KeepSite()); err != nil {
		panic(err)
	}
	ctx := context.Background()
	if err := cat.Attach(ctx, c); err != nil {
		panic(err)
	}
	if err := cat.Compile(ctx); err != nil {
		panic(err)
	}
	return cat
}
