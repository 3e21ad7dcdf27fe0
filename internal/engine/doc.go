// Package engine implements the invoice reconciliation engine.
//
// The engine takes one Claim, consults the vendor registry and the invoice
// ledger, and produces exactly one Verdict:
//
//	claim -> LookupVendor -> (authenticated) LookupInvoice -> InsertInvoice  => Accepted
//	                                                       \-> EnqueueReview => Rejected
//
// DECISION CHAIN (each step short-circuits to Rejected):
//  1. vendor exists                       vendor_not_found
//  2. vendor is active                    vendor_inactive
//  3. sender equals vendor email exactly  sender_mismatch
//  4. invoice is not already paid         invoice_already_paid
//  5. ledger insert wins                  duplicate_invoice
//
// Store faults, timeouts and panics in steps 1-5 become processing_error
// rejections carrying a bounded diagnostic. If the review sink cannot record
// a rejection, Reconcile returns an error instead of a verdict and the caller
// must resubmit the claim.
//
// CONCURRENCY:
//
// The engine holds no mutable shared state. Any number of goroutines may call
// Reconcile at once. The ledger's atomic insert is the only serialization
// point: of two concurrent claims for one invoice ID, exactly one is
// Accepted and the other is Rejected(duplicate_invoice).
//
// ReconcileAll fans a batch out over a bounded worker group. Runner accepts a
// stream of claims through Submit and drains them with a fixed worker pool.
package engine
