package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a framecheck scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the directory holding the CUE spec.
	// Relative paths are resolved against the base path.
	Spec string `yaml:"spec"`

	// Config is an optional YAML config file, resolved like Spec.
	Config string `yaml:"config,omitempty"`

	// Select restricts the run to the named transitions.
	Select []string `yaml:"select,omitempty"`

	// Assertions validate the reports and the recorded run.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Predicate is the unqualified transition or definition name.
	Predicate string `yaml:"predicate,omitempty"`

	// Field is the "Sig.field" id (used by missing_field).
	Field string `yaml:"field,omitempty"`

	// Tokens are the expected unaccounted tokens, in sorted order
	// (used by missing_field and missing_sets). Empty matches any.
	Tokens []string `yaml:"tokens,omitempty"`

	// Code is the expected error code (used by error). Empty matches any.
	Code string `yaml:"code,omitempty"`

	// Status is the expected stored report status (used by stored).
	Status string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertClean          = "clean"
	AssertSkipped        = "skipped"
	AssertMissingField   = "missing_field"
	AssertMissingSets    = "missing_sets"
	AssertBranchMismatch = "branch_mismatch"
	AssertError          = "error"
	AssertStored         = "stored"
)

// LoadScenario reads and parses a scenario YAML file. Relative spec and
// config paths are resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec and config paths relative to basePath.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
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

	scenario.Spec = resolvePath(scenario.Spec, basePath)
	scenario.Config = resolvePath(scenario.Config, basePath)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func resolvePath(p, basePath string) string {
	if p == "" || filepath.IsAbs(p) || basePath == "" {
		return p
	}
	return filepath.Join(basePath, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := os.Stat(s.Spec); os.IsNotExist(err) {
		return fmt.Errorf("spec directory not found: %s", s.Spec)
	}

	if s.Config != "" {
		if _, err := os.Stat(s.Config); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.Config)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertClean, AssertSkipped, AssertMissingSets, AssertBranchMismatch:
		if a.Predicate == "" {
			return fmt.Errorf("%s requires predicate", a.Type)
		}
	case AssertMissingField:
		if a.Predicate == "" || a.Field == "" {
			return fmt.Errorf("%s requires predicate and field", a.Type)
		}
	case AssertStored:
		if a.Predicate == "" || a.Status == "" {
			return fmt.Errorf("%s requires predicate and status", a.Type)
		}
	case AssertError:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
