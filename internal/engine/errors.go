package engine

import (
	"errors"
	"fmt"
)

// MaxDiagnosticLen bounds the detail attached to processing_error verdicts.
const MaxDiagnosticLen = 100

// FaultCode categorizes infrastructure failures.
type FaultCode string

const (
	// ErrCodeStoreFault indicates the registry or ledger returned an error
	// or panicked.
	ErrCodeStoreFault FaultCode = "STORE_FAULT"

	// ErrCodeStoreTimeout indicates a store call exceeded the store timeout.
	ErrCodeStoreTimeout FaultCode = "STORE_TIMEOUT"

	// ErrCodeReviewUnavailable indicates the review sink could not record a
	// rejection. The claim was not processed and must be resubmitted.
	ErrCodeReviewUnavailable FaultCode = "REVIEW_UNAVAILABLE"

	// ErrCodeCanceled indicates the caller's context ended before the claim
	// reached a durable verdict.
	ErrCodeCanceled FaultCode = "CANCELED"
)

// FaultError is an infrastructure failure observed while reconciling a claim.
type FaultError struct {
	// Code identifies the failure category.
	Code FaultCode

	// Op names the store operation that failed (e.g. "lookup vendor").
	Op string

	// ClaimID identifies the affected claim.
	ClaimID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	if e.ClaimID != "" {
		return fmt.Sprintf("%s: %s (claim=%s): %v", e.Code, e.Op, e.ClaimID, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *FaultError) Unwrap() error {
	return e.Err
}

// Diagnostic returns a bounded description safe to store with a review
// entry. It never includes claim fields.
func (e *FaultError) Diagnostic() string {
	return truncate(fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err), MaxDiagnosticLen)
}

// IsReviewUnavailable returns true if the review sink rejected the write.
func IsReviewUnavailable(err error) bool {
	return hasCode(err, ErrCodeReviewUnavailable)
}

// IsStoreTimeout returns true if any fault in the chain is a store timeout.
func IsStoreTimeout(err error) bool {
	return hasCode(err, ErrCodeStoreTimeout)
}

// IsCanceled returns true if the claim was abandoned because the caller's
// context ended.
func IsCanceled(err error) bool {
	return hasCode(err, ErrCodeCanceled)
}

// hasCode walks nested faults, since a sink fault wraps the guard fault
// that caused it.
func hasCode(err error, code FaultCode) bool {
	var fe *FaultError
	for errors.As(err, &fe) {
		if fe.Code == code {
			return true
		}
		err = fe.Err
	}
	return false
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
