package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a transform test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Input is the IDL JSON file to transform.
	// Relative paths are resolved against the scenario file's directory.
	Input string `yaml:"input"`

	// Assertions validate the transformed document.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one location of the transformed document.
type Assertion struct {
	// Type is one of equals, present, absent, count.
	Type string `yaml:"type"`

	// Path addresses the value, e.g. "accounts.0.type.kind".
	Path string `yaml:"path"`

	// Value is the expected value (used by equals).
	Value any `yaml:"value,omitempty"`

	// Count is the expected array length (used by count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEquals  = "equals"
	AssertPresent = "present"
	AssertAbsent  = "absent"
	AssertCount   = "count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve input path relative to the scenario file BEFORE validation
	if scenario.Input != "" && !filepath.IsAbs(scenario.Input) {
		scenario.Input = filepath.Join(filepath.Dir(path), scenario.Input)
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

	if s.Input == "" {
		return fmt.Errorf("input is required")
	}

	if _, err := os.Stat(s.Input); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", s.Input)
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
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEquals:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for equals", index)
		}
	case AssertPresent, AssertAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
