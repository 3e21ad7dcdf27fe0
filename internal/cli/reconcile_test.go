package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClaims = `
claims:
  - {claim_id: m-1, sender: a@x.com, vendor_id: V1, invoice_id: I1, amount: "500"}
  - {claim_id: m-2, sender: a@x.com, vendor_id: V1, invoice_id: I2, amount: "75"}
  - {claim_id: m-3, sender: b@x.com, vendor_id: V2, invoice_id: I5, amount: "10"}
  - {claim_id: m-4, sender: evil@y.com, vendor_id: V1, invoice_id: I6, amount: "10"}
  - {claim_id: m-5, sender: a@x.com, vendor_id: V9, invoice_id: I7, amount: "10"}
`

func TestReconcileText(t *testing.T) {
	db := seededDB(t)

	out := mustExecute(t, db, "reconcile", writeFile(t, "claims.yaml", testClaims))

	assert.Contains(t, out, "accepted m-1 V1/I1")
	assert.Contains(t, out, "rejected m-2 V1/I2: ")
	assert.Contains(t, out, "Summary: 1 accepted, 4 rejected, 0 failed, 5 total")
	assert.Contains(t, out, "invoice_already_paid")
	assert.Contains(t, out, "vendor_inactive")
	assert.Contains(t, out, "sender_mismatch")
	assert.Contains(t, out, "vendor_not_found")
}

func TestReconcileJSON(t *testing.T) {
	db := seededDB(t)

	out := mustExecute(t, db, "--format", "json", "reconcile", "--workers", "3",
		writeFile(t, "claims.yaml", testClaims))

	var resp struct {
		Status string          `json:"status"`
		Data   ReconcileReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	report := resp.Data
	require.Len(t, report.Claims, 5)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 4, report.Rejected)
	assert.Zero(t, report.Failed)

	// Results stay in file order regardless of worker scheduling.
	want := []struct{ id, outcome, reason string }{
		{"m-1", "accepted", ""},
		{"m-2", "rejected", "invoice_already_paid"},
		{"m-3", "rejected", "vendor_inactive"},
		{"m-4", "rejected", "sender_mismatch"},
		{"m-5", "rejected", "vendor_not_found"},
	}
	for i, w := range want {
		assert.Equal(t, w.id, report.Claims[i].ClaimID)
		assert.Equal(t, w.outcome, report.Claims[i].Outcome, w.id)
		assert.Equal(t, w.reason, report.Claims[i].Reason, w.id)
	}
	assert.Equal(t, map[string]int{
		"invoice_already_paid": 1,
		"vendor_inactive":      1,
		"sender_mismatch":      1,
		"vendor_not_found":     1,
	}, report.ByReason)
}

func TestReconcileReplayIsDuplicate(t *testing.T) {
	db := seededDB(t)
	claims := writeFile(t, "claims.yaml", `
claims:
  - {sender: a@x.com, vendor_id: V1, invoice_id: I1, amount: "500"}
`)

	mustExecute(t, db, "reconcile", claims)
	out := mustExecute(t, db, "reconcile", claims)
	assert.Contains(t, out, "Summary: 0 accepted, 1 rejected, 0 failed, 1 total")
	assert.Contains(t, out, "duplicate_invoice")

	out = mustExecute(t, db, "review", "list")
	assert.Contains(t, out, "duplicate_invoice")
}

func TestReconcileSameInvoiceConcurrently(t *testing.T) {
	db := seededDB(t)
	claims := writeFile(t, "claims.yaml", `
claims:
  - {sender: a@x.com, vendor_id: V1, invoice_id: I9, amount: "1"}
  - {sender: a@x.com, vendor_id: V1, invoice_id: I9, amount: "1"}
  - {sender: a@x.com, vendor_id: V1, invoice_id: I9, amount: "1"}
  - {sender: a@x.com, vendor_id: V1, invoice_id: I9, amount: "1"}
`)

	out := mustExecute(t, db, "--format", "json", "reconcile", "--workers", "4", claims)
	var resp struct {
		Data ReconcileReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Accepted)
	assert.Equal(t, 3, resp.Data.Rejected)
	assert.Equal(t, map[string]int{"duplicate_invoice": 3}, resp.Data.ByReason)
}

func TestReconcileInvalidClaimsFile(t *testing.T) {
	claims := writeFile(t, "claims.yaml", `
claims:
  - {sender: a@x.com, vendor_id: V1, invoice_id: I1, amount: "-5"}
`)
	run := execute(t, seededDB(t), "", "reconcile", claims)
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "invalid claims file")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestReconcileRedisUnavailable(t *testing.T) {
	t.Setenv("BOOKKEEPER_REDIS_ADDR", "127.0.0.1:1")
	claims := writeFile(t, "claims.yaml", testClaims)

	run := execute(t, seededDB(t), "", "--review-sink", "redis", "reconcile", claims)
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "review sink unavailable")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestClaimReportLine(t *testing.T) {
	tests := []struct {
		name   string
		report ClaimReport
		want   string
	}{
		{
			name:   "accepted",
			report: ClaimReport{ClaimID: "c1", VendorID: "V1", InvoiceID: "I1", Outcome: "accepted"},
			want:   "accepted c1 V1/I1",
		},
		{
			name:   "failed",
			report: ClaimReport{ClaimID: "c2", VendorID: "V1", InvoiceID: "I1", Outcome: "failed", Error: "boom"},
			want:   "failed   c2 V1/I1: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Line())
		})
	}
}
