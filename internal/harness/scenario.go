package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/store"
)

// Scenario defines a search scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is a store fixture file.
	Fixture string `yaml:"fixture,omitempty"`

	// Contacts and Papers are loaded after Fixture.
	Contacts []ir.Contact         `yaml:"contacts,omitempty"`
	Papers   []store.FixturePaper `yaml:"papers,omitempty"`

	// Conf is a CUE settings file. Without it the conference has default
	// settings.
	Conf string `yaml:"conf,omitempty"`

	// Setup applies tag assignments before the flow.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Flow runs the searches.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and the final store.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// SearchToken is the log token of every search. Defaults to
	// "test-search-default".
	SearchToken string `yaml:"search_token,omitempty"`
}

// SetupStep applies one assignment batch.
type SetupStep struct {
	// As is the email of the acting user.
	As string `yaml:"as"`

	// Assign is the batch CSV, header row included.
	Assign string `yaml:"assign"`
}

// FlowStep runs one search, or applies one assignment batch between
// searches.
type FlowStep struct {
	As       string `yaml:"as,omitempty"`
	Q        string `yaml:"q,omitempty"`
	Assign   string `yaml:"assign,omitempty"`
	T        string `yaml:"t,omitempty"`
	QT       string `yaml:"qt,omitempty"`
	Reviewer string `yaml:"reviewer,omitempty"`
	Sort     string `yaml:"sort,omitempty"`

	// Sorted records results in display order instead of by number.
	Sorted bool `yaml:"sorted,omitempty"`

	// Expect, when present, is checked against the search.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is what a search should produce. Unset fields are not
// checked.
type ExpectClause struct {
	// IDs are the expected results; an empty list expects none.
	IDs []int `yaml:"ids"`

	// Limit is the expected resolved limit.
	Limit string `yaml:"limit,omitempty"`

	// Warnings are substrings that must each appear in some warning.
	Warnings []string `yaml:"warnings,omitempty"`

	// NoWarnings requires the search to raise no warnings.
	NoWarnings bool `yaml:"no_warnings,omitempty"`
}

// Assertion validates the trace or the final store.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Q selects searches (trace_contains, result_order).
	Q string `yaml:"q,omitempty"`

	// IDs is the expected order (result_order).
	IDs []int `yaml:"ids,omitempty"`

	// Event and Count (trace_count).
	Event string `yaml:"event,omitempty"`
	Count int    `yaml:"count,omitempty"`

	// Tag and Values (tag_values).
	Tag    string          `yaml:"tag,omitempty"`
	Values map[int]float64 `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertResultOrder   = "result_order"
	AssertTagValues     = "tag_values"
)

// LoadScenario reads and parses a scenario YAML file. Fixture and
// settings paths are resolved relative to the file. Unknown fields
// (typos) and missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&scenario.Fixture, &scenario.Conf} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	for _, p := range []string{scenario.Fixture, scenario.Conf} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: file not found: %s", p)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.As == "" {
			return fmt.Errorf("setup[%d]: as is required", i)
		}
		if step.Assign == "" {
			return fmt.Errorf("setup[%d]: assign is required", i)
		}
	}

	for i, step := range s.Flow {
		if step.Assign != "" && (step.Q != "" || step.Expect != nil) {
			return fmt.Errorf("flow[%d]: assign cannot be combined with q or expect", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Q == "" {
			return fmt.Errorf("assertions[%d]: q is required for trace_contains", index)
		}
	case AssertTraceCount:
		if a.Event != EventSearch && a.Event != EventAssign {
			return fmt.Errorf("assertions[%d]: event must be %q or %q for trace_count", index, EventSearch, EventAssign)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertResultOrder:
		if a.Q == "" {
			return fmt.Errorf("assertions[%d]: q is required for result_order", index)
		}
	case AssertTagValues:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for tag_values", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
