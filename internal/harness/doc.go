// Package harness runs reconciliation scenarios end to end.
//
// A scenario seeds a registry and ledger, submits claims to the real
// engine backed by an in-memory SQLite store, and checks the verdicts and
// final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: duplicate_replay
//	description: "Resubmitting an accepted invoice is a duplicate"
//	vendors:
//	  - {vendor_id: V1, email: a@x.com}
//	invoices:
//	  - {invoice_id: I2, vendor_id: V1, amount: "75", paid: true}
//	claims:
//	  - claim: {sender: a@x.com, vendor_id: V1, invoice_id: I1, amount: "500"}
//	    expect: {outcome: accepted}
//	  - claim: {sender: a@x.com, vendor_id: V1, invoice_id: I1, amount: "500"}
//	    expect: {outcome: rejected, reason: duplicate_invoice}
//	assertions:
//	  - type: ledger_count
//	    count: 2
//	  - type: final_state
//	    table: invoices
//	    where: {invoice_id: I1}
//	    expect: {vendor_id: V1, paid: false}
//
// Vendors, invoices and claims use the intake file formats and are
// validated by the same schema.
//
// # Assertion Types
//
//   - trace_contains: some step matches the given fields
//   - trace_order: verdict labels appear in the given order
//   - trace_count: a verdict label appears exactly N times
//   - ledger_count, review_count: final row counts
//   - no_loss: new ledger rows plus review entries equal the claim count
//   - final_state: queries a store table and verifies expected values
//
// A verdict's label is its rejection reason, or "accepted".
//
// # Deterministic Testing
//
// The clock is frozen at testutil.Epoch and claim IDs are claim-0001,
// claim-0002, ... in submission order, so snapshots are byte-identical
// across runs and can be compared against golden files.
package harness
