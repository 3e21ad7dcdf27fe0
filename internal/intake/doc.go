// Package intake loads claim batches and registry seed files.
//
// Files are YAML (JSON is accepted as a subset). Each document is decoded
// strictly, validated against an embedded CUE schema, and only then
// converted into domain values, so a malformed amount or a missing sender is
// reported with its path before any claim reaches the engine.
//
// Claim batch:
//
//	claims:
//	  - sender: ap@acme.test
//	    vendor_id: V1
//	    invoice_id: INV-1001
//	    amount: "500.00"
//
// Seed file:
//
//	vendors:
//	  - {vendor_id: V1, name: Acme, email: ap@acme.test}
//	invoices:
//	  - {invoice_id: INV-0900, vendor_id: V1, amount: "75", paid: true}
package intake
