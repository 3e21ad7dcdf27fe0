package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bookkeeper/internal/domain"
)

// TraceSnapshot captures the verdict trace and final store state for a
// scenario execution.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Ledger       []LedgerRow
	Reviews      []ReviewRow
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. Empty optional fields are omitted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		m := map[string]any{
			"step":       e.Step,
			"claim_id":   e.ClaimID,
			"vendor_id":  e.VendorID,
			"invoice_id": e.InvoiceID,
			"outcome":    e.Outcome,
		}
		if e.Reason != "" {
			m["reason"] = e.Reason
		}
		if e.Detail != "" {
			m["detail"] = e.Detail
		}
		trace[i] = m
	}

	ledger := make([]any, len(s.Ledger))
	for i, r := range s.Ledger {
		m := map[string]any{
			"invoice_id": r.InvoiceID,
			"vendor_id":  r.VendorID,
			"amount":     r.Amount,
			"paid":       r.Paid,
			"entered_at": r.EnteredAt,
		}
		if r.ClaimID != "" {
			m["claim_id"] = r.ClaimID
		}
		ledger[i] = m
	}

	reviews := make([]any, len(s.Reviews))
	for i, r := range s.Reviews {
		reviews[i] = map[string]any{
			"seq":        r.Seq,
			"reason":     r.Reason,
			"claim_id":   r.ClaimID,
			"invoice_id": r.InvoiceID,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"ledger":        ledger,
		"reviews":       reviews,
	}
}

// SnapshotJSON renders a result as canonical JSON.
func SnapshotJSON(name string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Ledger:       result.Ledger,
		Reviews:      result.Reviews,
	}
	return domain.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshotJSON, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshotJSON)

	return nil
}
