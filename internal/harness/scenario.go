package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bookkeeper/internal/domain"
)

// Scenario defines a reconciliation test scenario: registry state, a
// sequence of claims with expected verdicts, and assertions on the final
// ledger and review queue.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Vendors and Invoices seed the registry and ledger. Entries use the
	// seed file format (see package intake).
	Vendors  []map[string]any `yaml:"vendors,omitempty"`
	Invoices []map[string]any `yaml:"invoices,omitempty"`

	// Claims are reconciled one at a time, in order.
	Claims []ClaimStep `yaml:"claims"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// ClaimStep is one claim plus its optional expected verdict.
type ClaimStep struct {
	// Claim uses the claim batch format (see package intake).
	Claim map[string]any `yaml:"claim"`

	// Expect, if set, is checked against the verdict.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected verdict.
type ExpectClause struct {
	// Outcome is "accepted" or "rejected".
	Outcome string `yaml:"outcome"`

	// Reason is the expected rejection reason. Empty matches any.
	Reason string `yaml:"reason,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": some step's fields match Match
	// - "trace_order": Labels appear in this relative order
	// - "trace_count": Label appears exactly Count times
	// - "ledger_count": the ledger holds exactly Count invoices
	// - "review_count": the review queue holds exactly Count entries
	// - "no_loss": new ledger rows plus review entries equal the claim count
	// - "final_state": query Table and verify expected column values
	Type string `yaml:"type"`

	// Match is a subset of trace event fields (used by trace_contains).
	Match map[string]any `yaml:"match,omitempty"`

	// Label is a verdict label (used by trace_count).
	Label string `yaml:"label,omitempty"`

	// Labels is the expected label order (used by trace_order).
	Labels []string `yaml:"labels,omitempty"`

	// Count is the expected number (used by trace_count, ledger_count,
	// review_count).
	Count int `yaml:"count,omitempty"`

	// Table is the store table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertLedgerCount   = "ledger_count"
	AssertReviewCount   = "review_count"
	AssertNoLoss        = "no_loss"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
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

// FindScenarios returns the .yaml and .yml files in dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Claims) == 0 {
		return fmt.Errorf("claims list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Claims {
		if step.Claim == nil {
			return fmt.Errorf("claims[%d]: claim is required", i)
		}
		if step.Expect != nil {
			if err := validateExpect(i, step.Expect); err != nil {
				return err
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

func validateExpect(index int, e *ExpectClause) error {
	switch domain.Outcome(e.Outcome) {
	case domain.OutcomeAccepted:
		if e.Reason != "" {
			return fmt.Errorf("claims[%d].expect: accepted verdicts have no reason", index)
		}
	case domain.OutcomeRejected:
		if e.Reason != "" && !domain.Reason(e.Reason).Valid() {
			return fmt.Errorf("claims[%d].expect: unknown reason %q", index, e.Reason)
		}
	default:
		return fmt.Errorf("claims[%d].expect: outcome must be accepted or rejected, got %q", index, e.Outcome)
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
		if len(a.Match) == 0 {
			return fmt.Errorf("assertions[%d]: match is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Labels) == 0 {
			return fmt.Errorf("assertions[%d]: labels list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertLedgerCount, AssertReviewCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertNoLoss:
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
