// Package domain defines the records the reconciliation engine reasons about.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import domain; domain imports nothing internal.
//
// Key design constraints:
//   - Monetary amounts are decimal.Decimal, never float64
//   - Identifiers are opaque strings compared byte for byte
//   - A Verdict is either Accepted or Rejected, never both and never neither
//   - All JSON tags use snake_case
package domain
