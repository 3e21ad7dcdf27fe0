// Package store provides SQLite-backed durable storage for the bookkeeper.
//
// One database holds three tables:
//   - vendors: the vendor registry (read-only to the engine)
//   - invoices: the invoice ledger (append-mostly)
//   - review_queue: the review sink (append-only)
//
// # Ledger Uniqueness
//
// invoice_id is the PRIMARY KEY of invoices. InsertInvoice uses
// INSERT ... ON CONFLICT(invoice_id) DO NOTHING and inspects RowsAffected,
// so the uniqueness check and the write are one statement. There is no
// lookup-then-insert path anywhere in this package.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: invoices must reference an existing vendor
//
// Amounts are stored as decimal strings and timestamps as UTC unix
// milliseconds.
package store
