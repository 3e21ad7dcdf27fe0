package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const passingScenario = `
name: accept_one
description: One valid claim is recorded
vendors:
  - {vendor_id: V1, email: a@x.com}
claims:
  - claim: {sender: a@x.com, vendor_id: V1, invoice_id: I1, amount: "5"}
    expect: {outcome: accepted}
assertions:
  - type: ledger_count
    count: 1
`

const failingScenario = `
name: wrong_expectation
description: Expects acceptance of a spoofed claim
vendors:
  - {vendor_id: V1, email: a@x.com}
claims:
  - claim: {sender: spoof@y.com, vendor_id: V1, invoice_id: I1, amount: "5"}
    expect: {outcome: accepted}
assertions:
  - type: no_loss
`

// scenarioDir lays out <tmp>/scenarios with the given files.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	run := execute(t, tempDB(t), "", "test")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	run := execute(t, tempDB(t), "", "test", "/nonexistent/scenarios")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	dir := scenarioDir(t, nil)

	out := mustExecute(t, tempDB(t), "test", dir)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out := mustExecute(t, tempDB(t), "test", harnessScenarios)
	assert.Contains(t, out, "ok   accepted_then_duplicate")
	assert.Contains(t, out, "ok   business_rejections")
	assert.Contains(t, out, "ok   unpaid_existing")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out := mustExecute(t, tempDB(t), "--format", "json", "test", harnessScenarios, "--filter", "unpaid*")

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "unpaid_existing", resp.Data.Scenarios[0].Name)
	assert.Equal(t, 1, resp.Data.Passed)
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"accept_one.yaml":        passingScenario,
		"wrong_expectation.yaml": failingScenario,
	})

	run := execute(t, tempDB(t), "", "test", dir)
	require.Error(t, run.err)
	assert.Equal(t, ExitFailure, GetExitCode(run.err))
	assert.Contains(t, run.stdout, "ok   accept_one")
	assert.Contains(t, run.stdout, "FAIL wrong_expectation")
	assert.Contains(t, run.stdout, "expected outcome accepted, got rejected (sender_mismatch)")
	assert.Contains(t, run.stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\n"})

	run := execute(t, tempDB(t), "", "--format", "json", "test", dir)
	require.Error(t, run.err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(run.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "broken.yaml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"accept_one.yaml": passingScenario})
	golden := filepath.Join(filepath.Dir(dir), "golden", "accept_one.golden")

	out := mustExecute(t, tempDB(t), "test", dir, "--update")
	assert.Contains(t, out, "ok   accept_one (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"accept_one"`)

	mustExecute(t, tempDB(t), "test", dir)

	// A stale golden file fails the run.
	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario_name":"accept_one","trace":[]}`), 0o644))
	run := execute(t, tempDB(t), "", "test", dir)
	require.Error(t, run.err)
	assert.Contains(t, run.stdout, "snapshot does not match golden file")
}
