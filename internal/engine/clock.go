package engine

import "time"

// Clock supplies entry timestamps for recorded invoices and review entries.
//
// Timestamps are informational only. The engine never orders or decides on
// them, so a fixed clock in tests yields identical verdicts.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
//
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
