package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/traitkit/internal/script"
)

// Scenario defines a conformance test scenario: a sequence of engine
// queries with expected outcomes, evaluated against an optional catalog.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is a directory of CUE type declarations. Relative paths are
	// resolved against the base path given to LoadScenarioWithBasePath.
	// Without a catalog only primitive types have nominal facts.
	Catalog string `yaml:"catalog,omitempty"`

	// PointerSize overrides the 8-byte default.
	PointerSize int64 `yaml:"pointer_size,omitempty"`

	// SessionID is a fixed store session id for deterministic traces.
	// If empty, defaults to "test-session".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps are query script lines, evaluated in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the finished trace.
	// Supported types: trace_contains, trace_order, trace_count, stored_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one query. The expectation may be given in Expect or inline
// after "=>" in Query, not both.
type Step struct {
	Query  string `yaml:"query"`
	Expect string `yaml:"expect,omitempty"`
}

// Statement parses the step into a script statement.
func (s Step) Statement() (script.Statement, error) {
	st, err := script.ParseLine(s.Query)
	if err != nil {
		return st, err
	}
	if s.Expect == "" {
		return st, nil
	}
	if st.Expect != nil {
		return st, fmt.Errorf("expectation given both inline and in expect")
	}
	o, err := script.ParseOutcome(s.Expect)
	if err != nil {
		return st, err
	}
	st.Expect = &o
	return st, nil
}

// Assertion validates the trace or the memo store.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a step ran Query, optionally with Outcome
	// - "trace_order": Queries ran in this order
	// - "trace_count": exactly Count steps produced Outcome
	// - "stored_count": exactly Count evaluations were persisted
	Type string `yaml:"type"`

	// Query is a script line (used by trace_contains).
	Query string `yaml:"query,omitempty"`

	// Outcome is an expectation such as "true" or "error(NO_SIZE)"
	// (used by trace_contains and trace_count).
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number (used by trace_count and stored_count).
	Count int `yaml:"count,omitempty"`

	// Queries is the expected order (used by trace_order).
	Queries []string `yaml:"queries,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertStoredCount   = "stored_count"
)

// LoadScenario reads and parses a scenario YAML file. Relative catalog
// paths are resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the catalog path relative to basePath.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) && basePath != "" {
		scenario.Catalog = filepath.Join(basePath, scenario.Catalog)
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

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.PointerSize != 0 && s.PointerSize != 4 && s.PointerSize != 8 {
		return fmt.Errorf("pointer_size must be 4 or 8, got %d", s.PointerSize)
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog not found: %s", s.Catalog)
		}
	}

	for i, step := range s.Steps {
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		if _, err := step.Statement(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: query is required for trace_contains", index)
		}
		if _, err := script.ParseLine(a.Query); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertTraceOrder:
		if len(a.Queries) == 0 {
			return fmt.Errorf("assertions[%d]: queries list is required for trace_order", index)
		}
		for _, q := range a.Queries {
			if _, err := script.ParseLine(q); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertTraceCount:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertStoredCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for stored_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Outcome != "" {
		if _, err := script.ParseOutcome(a.Outcome); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	return nil
}
