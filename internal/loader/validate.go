package loader

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/definition"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames are bound by the evaluator and cannot name an object.
var reservedNames = []string{definition.VarSubject, definition.VarObject, compiler.RandomThing}

// validateEvent checks the structure Attach does not: object keys usable
// as variables, effect targets, default results and required fields.
func (d *decoder) validateEvent(e *definition.Event) {
	path := "event:" + e.DefinitionName

	for _, key := range slices.Sorted(maps.Keys(e.Objects)) {
		objPath := fmt.Sprintf("%s/Objects[%s]", path, key)
		pos := d.sources[objPath]
		switch {
		case key == "":
			d.fail(ErrEmptyKey, path+".objects", "object key is empty", pos)
		case slices.Contains(reservedNames, key):
			d.fail(ErrReservedKey, objPath, fmt.Sprintf("object key %q is a reserved variable name", key), pos)
		case !identifierRE.MatchString(key):
			d.fail(ErrInvalidIdentifier, objPath, fmt.Sprintf("object key %q is not a valid variable name", key), pos)
		}
	}

	defaults := 0
	for i, r := range e.Results {
		resultPath := fmt.Sprintf("%s/Results[%d]", path, i)
		if r.Default {
			defaults++
			if defaults > 1 {
				d.fail(ErrMultipleDefaults, resultPath, "more than one default result", d.sources[resultPath])
			}
		}
		for j, eff := range r.Effects {
			effPath := fmt.Sprintf("%s/Effects[%d]", resultPath, j)
			if eff.Magnitude == "" {
				d.fail(ErrMissingMagnitude, effPath, "effect has no magnitude", d.sources[effPath])
			}
			for _, target := range eff.AppliedTo {
				if target == definition.VarSubject {
					continue
				}
				if _, ok := e.Objects[target]; !ok {
					d.fail(ErrUnknownTarget, effPath+".appliedTo",
						fmt.Sprintf("%q is neither Subject nor an object of the event", target), d.sources[effPath])
				}
			}
		}
		for j, sp := range r.Spawns {
			spPath := fmt.Sprintf("%s/Spawns[%d]", resultPath, j)
			if sp.DefinitionNameToSpawn == "" {
				d.fail(ErrMissingSpawnName, spPath, "spawn has no definitionNameToSpawn", d.sources[spPath])
			}
			d.validateKeys(spPath, sp.Attributes)
		}
	}
}

func (d *decoder) validateSite(s *definition.Site) {
	d.validateKeys("site:"+s.Name, s.Attributes)
}

func (d *decoder) validateKeys(path string, attrs map[string]string) {
	if _, ok := attrs[""]; ok {
		d.fail(ErrEmptyKey, path+".attributes", "attribute key is empty", d.sources[path+".Attributes[]"])
	}
}
