package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one deterministic run over a set of packs.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Packs lists pack directories, relative to the scenario file.
	Packs []string `yaml:"packs"`

	Seed int64 `yaml:"seed"`

	// RunID is the fixed run ID. Empty means "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Globals are compiler globals visible to every expression.
	Globals map[string]any `yaml:"globals,omitempty"`

	// Things are the named things steps bind, keyed by a scenario-local
	// handle.
	Things map[string]ThingSpec `yaml:"things,omitempty"`

	Steps []StepSpec `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ThingSpec describes a thing. An empty Name defaults to the handle.
type ThingSpec struct {
	Name       string           `yaml:"name"`
	Attributes map[string]int64 `yaml:"attributes"`
}

// StepSpec is one property evaluation.
type StepSpec struct {
	Path     string `yaml:"path"`
	Property string `yaml:"property"`
	Key      string `yaml:"key,omitempty"`

	// Bind maps parameter names to thing handles or scalar values.
	Bind map[string]any `yaml:"bind,omitempty"`

	// Expect is the expected int, bool or string result.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError is the expected error code.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Target returns the step's address as it appears in trace assertions.
func (s StepSpec) Target() string {
	return target(s.Path, s.Property, s.Key)
}

func target(path, property, key string) string {
	t := path + "." + property
	if key != "" {
		t += "[" + key + "]"
	}
	return t
}

// Assertion validates the trace or the stored run.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Filters used by trace_contains and trace_count. Empty filters match
	// anything.
	Path     string `yaml:"path,omitempty"`
	Property string `yaml:"property,omitempty"`
	Key      string `yaml:"key,omitempty"`
	Code     string `yaml:"code,omitempty"`

	// Value is the expected value (trace_contains).
	Value any `yaml:"value,omitempty"`

	// Count is the expected number of matches (trace_count).
	Count int `yaml:"count,omitempty"`

	// Targets is the expected order (trace_order).
	Targets []string `yaml:"targets,omitempty"`

	// Table, Where and Expect query the store (final_state). Where must
	// match exactly one row; Expect is a subset match.
	Table  string         `yaml:"table,omitempty"`
	Where  map[string]any `yaml:"where,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file, resolving pack paths
// relative to the file's directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving pack paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, pack := range scenario.Packs {
		if !filepath.IsAbs(pack) && basePath != "" {
			scenario.Packs[i] = filepath.Join(basePath, pack)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Packs) == 0 {
		return fmt.Errorf("packs list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, pack := range s.Packs {
		if _, err := os.Stat(pack); os.IsNotExist(err) {
			return fmt.Errorf("pack directory not found: %s", pack)
		}
	}

	for name := range s.Globals {
		if err := checkScalarOrHandle(s.Globals[name], s.Things); err != nil {
			return fmt.Errorf("globals.%s: %w", name, err)
		}
	}

	for i, step := range s.Steps {
		if step.Path == "" {
			return fmt.Errorf("steps[%d]: path is required", i)
		}
		if step.Property == "" {
			return fmt.Errorf("steps[%d]: property is required", i)
		}
		if step.Expect != nil && step.ExpectError != "" {
			return fmt.Errorf("steps[%d]: expect and expect_error are mutually exclusive", i)
		}
		if step.Expect != nil {
			if _, err := scalarValue(step.Expect); err != nil {
				return fmt.Errorf("steps[%d].expect: %w", i, err)
			}
		}
		for name, v := range step.Bind {
			if err := checkScalarOrHandle(v, s.Things); err != nil {
				return fmt.Errorf("steps[%d].bind.%s: %w", i, name, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func checkScalarOrHandle(v any, things map[string]ThingSpec) error {
	if s, ok := v.(string); ok {
		if _, isThing := things[s]; isThing {
			return nil
		}
	}
	_, err := scalarValue(v)
	return err
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for trace_contains", index)
		}
		if a.Value != nil {
			if _, err := scalarValue(a.Value); err != nil {
				return fmt.Errorf("assertions[%d].value: %w", index, err)
			}
		}
	case AssertTraceOrder:
		if len(a.Targets) == 0 {
			return fmt.Errorf("assertions[%d]: targets list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
