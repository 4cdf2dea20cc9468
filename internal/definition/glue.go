package definition

import (
	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/ir"
)

// EvalChance evaluates Chance with Subject bound to subject.
func (e *Event) EvalChance(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](e, "Chance", "", rng, bindThings(additional, subjectOnly, subject))
}

// ChanceParameters lists the variables Chance may reference.
func (e *Event) ChanceParameters() ([]string, error) { return Parameters(e, "Chance") }

// EvalDescription renders Description with Subject bound to subject.
func (e *Event) EvalDescription(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (string, error) {
	return evaluateAs[string](e, "Description", "", rng, bindThings(additional, subjectOnly, subject))
}

func (e *Event) DescriptionParameters() ([]string, error) { return Parameters(e, "Description") }

func (s *Subject) EvalCondition(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (bool, error) {
	return evaluateAs[bool](s, "Condition", "", rng, bindThings(additional, subjectOnly, subject))
}

func (s *Subject) ConditionParameters() ([]string, error) { return Parameters(s, "Condition") }

// EvalDistance evaluates the maximum distance between subject and object.
func (o *Object) EvalDistance(rng compiler.Rand, subject, object *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](o, "Distance", "", rng, bindThings(additional, subjectAndObject, subject, object))
}

func (o *Object) DistanceParameters() ([]string, error) { return Parameters(o, "Distance") }

// EvalCondition decides whether object qualifies for the event.
func (o *Object) EvalCondition(rng compiler.Rand, subject, object *ir.Thing, additional ir.Bindings) (bool, error) {
	return evaluateAs[bool](o, "Condition", "", rng, bindThings(additional, subjectAndObject, subject, object))
}

func (o *Object) ConditionParameters() ([]string, error) { return Parameters(o, "Condition") }

func (r *EventResult) EvalChance(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](r, "Chance", "", rng, bindThings(additional, subjectOnly, subject))
}

func (r *EventResult) ChanceParameters() ([]string, error) { return Parameters(r, "Chance") }

func (r *EventResult) EvalCondition(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (bool, error) {
	return evaluateAs[bool](r, "Condition", "", rng, bindThings(additional, subjectOnly, subject))
}

func (r *EventResult) ConditionParameters() ([]string, error) { return Parameters(r, "Condition") }

func (e *Effect) EvalMagnitude(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](e, "Magnitude", "", rng, bindThings(additional, subjectOnly, subject))
}

func (e *Effect) MagnitudeParameters() ([]string, error) { return Parameters(e, "Magnitude") }

// EvalDuration returns the effect duration; -1 means permanent.
func (e *Effect) EvalDuration(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](e, "Duration", "", rng, bindThings(additional, subjectOnly, subject))
}

func (e *Effect) DurationParameters() ([]string, error) { return Parameters(e, "Duration") }

func (e *Effect) EvalTitle(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (string, error) {
	return evaluateAs[string](e, "Title", "", rng, bindThings(additional, subjectOnly, subject))
}

func (e *Effect) TitleParameters() ([]string, error) { return Parameters(e, "Title") }

func (e *Effect) EvalDescription(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (string, error) {
	return evaluateAs[string](e, "Description", "", rng, bindThings(additional, subjectOnly, subject))
}

func (e *Effect) DescriptionParameters() ([]string, error) { return Parameters(e, "Description") }

// EvalAttributes evaluates the starting value of one spawned attribute.
func (s *Spawn) EvalAttributes(key string, rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](s, "Attributes", key, rng, bindThings(additional, subjectOnly, subject))
}

func (s *Spawn) AttributesParameters() ([]string, error) { return Parameters(s, "Attributes") }

// AttributesKeys lists the attribute names bound at the last Attach.
func (s *Spawn) AttributesKeys() ([]string, error) { return Keys(s, "Attributes") }

func (s *Site) EvalDescription(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (string, error) {
	return evaluateAs[string](s, "Description", "", rng, bindThings(additional, subjectOnly, subject))
}

func (s *Site) DescriptionParameters() ([]string, error) { return Parameters(s, "Description") }

func (s *Site) EvalAttributes(key string, rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](s, "Attributes", key, rng, bindThings(additional, subjectOnly, subject))
}

func (s *Site) AttributesParameters() ([]string, error) { return Parameters(s, "Attributes") }

func (s *Site) AttributesKeys() ([]string, error) { return Keys(s, "Attributes") }

func (s *SubSites) EvalMaximumSubSites(rng compiler.Rand, subject *ir.Thing, additional ir.Bindings) (int64, error) {
	return evaluateAs[int64](s, "MaximumSubSites", "", rng, bindThings(additional, subjectOnly, subject))
}

// MaximumSubSitesParameters lists the variables MaximumSubSites may
// reference.
func (s *SubSites) MaximumSubSitesParameters() ([]string, error) {
	return Parameters(s, "MaximumSubSites")
}
