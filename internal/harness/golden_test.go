package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios and compares
// its snapshot against the matching golden file.
func TestScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name should match file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario should pass: errors=%v", result.Errors)
		})
	}
}

func TestScenarios_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/business_rejections.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := SnapshotJSON(scenario.Name, first)
	require.NoError(t, err)
	b, err := SnapshotJSON(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshotJSON_OmitsEmptyOptionalFields(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Step: 0, ClaimID: "c", VendorID: "V", InvoiceID: "I", Outcome: "accepted"})
	result.Ledger = append(result.Ledger, LedgerRow{InvoiceID: "I", VendorID: "V", Amount: "1", EnteredAt: "2024-01-01T00:00:00Z"})

	data, err := SnapshotJSON("x", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"ledger":[{"amount":"1","entered_at":"2024-01-01T00:00:00Z","invoice_id":"I","paid":false,"vendor_id":"V"}],`+
			`"reviews":[],"scenario_name":"x",`+
			`"trace":[{"claim_id":"c","invoice_id":"I","outcome":"accepted","step":0,"vendor_id":"V"}]}`,
		string(data))
}
