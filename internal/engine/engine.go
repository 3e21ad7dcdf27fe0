package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/bookkeeper/internal/domain"
)

// VendorRegistry answers vendor identity queries.
// found=false with a nil error means the vendor does not exist.
type VendorRegistry interface {
	LookupVendor(ctx context.Context, id string) (v domain.Vendor, found bool, err error)
}

// InvoiceLedger is the authoritative store of recorded invoices.
//
// InsertInvoice must carry the uniqueness check itself: of any number of
// concurrent inserts of one ID, exactly one reports inserted=true and the
// rest report inserted=false with a nil error.
type InvoiceLedger interface {
	LookupInvoice(ctx context.Context, id string) (inv domain.Invoice, found bool, err error)
	InsertInvoice(ctx context.Context, inv domain.Invoice) (inserted bool, err error)
}

// ReviewSink durably queues rejected claims for a human.
type ReviewSink interface {
	EnqueueReview(ctx context.Context, entry domain.ReviewEntry) error
}

// Engine reconciles claims against a vendor registry and invoice ledger.
//
// Thread-safety: all methods are safe for concurrent use. The engine's
// fields are set at construction and never mutated.
type Engine struct {
	vendors      VendorRegistry
	ledger       InvoiceLedger
	sink         ReviewSink
	clock        Clock
	claimIDs     ClaimIDGenerator
	storeTimeout time.Duration
	settle       time.Duration
}

// DefaultSettleTimeout is how long the engine waits for a ledger insert or
// review enqueue that outlived its store timeout before deciding the claim.
const DefaultSettleTimeout = 2 * time.Second

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to stamp invoices and review entries.
// Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithClaimIDs sets the generator for claims that arrive without an ID.
// Default: UUIDv7Generator.
func WithClaimIDs(g ClaimIDGenerator) Option {
	return func(e *Engine) {
		e.claimIDs = g
	}
}

// WithStoreTimeout bounds every registry, ledger and sink call.
// Zero (the default) leaves calls bounded only by the caller's context.
func WithStoreTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.storeTimeout = d
	}
}

// WithSettleTimeout bounds the wait for an abandoned insert or enqueue to
// report its real outcome. A store that honors cancellation reports almost
// at once; one that ignores it may still commit within this window. Zero
// skips the wait and relies on the ledger re-read alone.
func WithSettleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.settle = d
	}
}

// New creates an Engine over the given stores.
func New(vendors VendorRegistry, ledger InvoiceLedger, sink ReviewSink, opts ...Option) *Engine {
	e := &Engine{
		vendors:  vendors,
		ledger:   ledger,
		sink:     sink,
		clock:    SystemClock{},
		claimIDs: UUIDv7Generator{},
		settle:   DefaultSettleTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile decides one claim and applies its side effect.
//
// On success exactly one of these has happened: the invoice was inserted
// into the ledger (Accepted), or the claim was enqueued to the review sink
// (Rejected). A non-nil error means neither is guaranteed durable and the
// caller must resubmit the claim; the returned Verdict is then the zero
// value.
//
// A ledger insert that faults or outlives the store timeout is settled
// before any rejection is recorded: the engine waits out the settle window
// for the call's real result, then re-reads the ledger. An invoice row
// carrying this claim's ID makes the verdict Accepted. Only a store that
// ignores cancellation and commits after the settle window can still leave
// a row next to a processing_error entry.
//
// Review enqueues are at-least-once. An enqueue that lands after the settle
// window is reported as a failure, and the caller's resubmit adds a second
// entry with the same claim digest.
func (e *Engine) Reconcile(ctx context.Context, claim domain.Claim) (domain.Verdict, error) {
	if claim.ID == "" {
		claim.ID = e.claimIDs.Generate()
	}
	claim.Problem = ""

	if err := ctx.Err(); err != nil {
		return domain.Verdict{}, &FaultError{Code: ErrCodeCanceled, Op: "reconcile", ClaimID: claim.ID, Err: err}
	}

	verdict := e.decide(ctx, claim)
	if verdict.IsAccepted() {
		slog.Info("claim accepted",
			"claim_id", claim.ID,
			"vendor_id", claim.VendorID,
			"invoice_id", claim.InvoiceID,
			"amount", claim.Amount.String(),
		)
		return verdict, nil
	}

	if err := e.forward(ctx, verdict); err != nil {
		slog.Error("claim not processed",
			"claim_id", claim.ID,
			"invoice_id", claim.InvoiceID,
			"reason", verdict.Reason,
			"error", err,
		)
		return domain.Verdict{}, err
	}

	slog.Info("claim forwarded to review",
		"claim_id", claim.ID,
		"vendor_id", claim.VendorID,
		"invoice_id", claim.InvoiceID,
		"reason", verdict.Reason,
	)
	return verdict, nil
}

// decide runs the decision chain. It never returns a fault: store failures
// become processing_error verdicts.
func (e *Engine) decide(ctx context.Context, claim domain.Claim) domain.Verdict {
	var vendor domain.Vendor
	var found bool
	err := e.guard(ctx, "lookup vendor", func(ctx context.Context) (err error) {
		vendor, found, err = e.vendors.LookupVendor(ctx, claim.VendorID)
		return err
	})
	if err != nil {
		return e.processingError(claim, err)
	}
	if !found {
		return domain.Rejected(domain.ReasonVendorNotFound, "", claim)
	}
	if !vendor.Active {
		return domain.Rejected(domain.ReasonVendorInactive, "", claim)
	}
	if claim.Sender != vendor.Email {
		return domain.Rejected(domain.ReasonSenderMismatch, "", claim)
	}

	var existing domain.Invoice
	err = e.guard(ctx, "lookup invoice", func(ctx context.Context) (err error) {
		existing, found, err = e.ledger.LookupInvoice(ctx, claim.InvoiceID)
		return err
	})
	if err != nil {
		return e.processingError(claim, err)
	}
	if found && existing.Paid {
		return domain.Rejected(domain.ReasonInvoiceAlreadyPaid, "", claim)
	}
	// A found-but-unpaid invoice falls through: the insert below is the
	// final authority and reports it as a duplicate.

	inv := domain.Invoice{
		ID:            claim.InvoiceID,
		VendorID:      vendor.ID,
		Amount:        claim.Amount,
		EnteredAt:     e.clock.Now().UTC(),
		SenderEmail:   claim.Sender,
		AttachmentRef: claim.AttachmentRef,
		ClaimID:       claim.ID,
	}
	var inserted bool
	late, err := e.run(ctx, "insert invoice", func(ctx context.Context) (err error) {
		inserted, err = e.ledger.InsertInvoice(ctx, inv)
		return err
	})
	if late != nil {
		if settled, lateErr := e.settleCall(late); settled && lateErr == nil {
			slog.Warn("ledger insert completed after store timeout",
				"claim_id", claim.ID,
				"invoice_id", claim.InvoiceID,
				"inserted", inserted,
			)
			err = nil
		}
	}
	if err != nil {
		if e.recordedBy(ctx, claim) {
			slog.Warn("ledger insert fault but invoice recorded for this claim",
				"claim_id", claim.ID,
				"invoice_id", claim.InvoiceID,
				"error", err,
			)
			return domain.Accepted(inv, claim)
		}
		return e.processingError(claim, err)
	}
	if !inserted {
		return domain.Rejected(domain.ReasonDuplicateInvoice, "", claim)
	}
	return domain.Accepted(inv, claim)
}

// recordedBy re-reads the ledger after a faulted insert and reports whether
// the invoice row was written for this claim. The read runs on a fresh
// context so a canceled caller still learns what the ledger holds.
func (e *Engine) recordedBy(ctx context.Context, claim domain.Claim) bool {
	verifyCtx := context.WithoutCancel(ctx)
	if e.storeTimeout <= 0 && e.settle > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(verifyCtx, e.settle)
		defer cancel()
	}

	var existing domain.Invoice
	var found bool
	err := e.guard(verifyCtx, "verify insert", func(ctx context.Context) (err error) {
		existing, found, err = e.ledger.LookupInvoice(ctx, claim.InvoiceID)
		return err
	})
	if err != nil {
		slog.Warn("could not verify faulted ledger insert",
			"claim_id", claim.ID,
			"invoice_id", claim.InvoiceID,
			"error", err,
		)
		return false
	}
	return found && existing.ClaimID == claim.ID
}

// forward records a rejection in the review sink.
func (e *Engine) forward(ctx context.Context, v domain.Verdict) error {
	entry, err := domain.NewReviewEntry(v.Reason, v.Detail, v.Claim, e.clock.Now())
	if err != nil {
		return &FaultError{Code: ErrCodeReviewUnavailable, Op: "build review entry", ClaimID: v.Claim.ID, Err: err}
	}

	late, err := e.run(ctx, "enqueue review", func(ctx context.Context) error {
		return e.sink.EnqueueReview(ctx, entry)
	})
	if late != nil {
		if settled, lateErr := e.settleCall(late); settled && lateErr == nil {
			slog.Warn("review enqueue completed after store timeout",
				"claim_id", v.Claim.ID,
				"reason", v.Reason,
			)
			return nil
		}
	}
	if err == nil {
		return nil
	}
	code := ErrCodeReviewUnavailable
	if ctx.Err() != nil {
		code = ErrCodeCanceled
	}
	return &FaultError{Code: code, Op: "enqueue review", ClaimID: v.Claim.ID, Err: err}
}

func (e *Engine) processingError(claim domain.Claim, err error) domain.Verdict {
	var fe *FaultError
	if !errors.As(err, &fe) {
		fe = &FaultError{Code: ErrCodeStoreFault, Op: "reconcile", Err: err}
	}
	slog.Warn("store fault during reconciliation",
		"claim_id", claim.ID,
		"code", fe.Code,
		"op", fe.Op,
		"error", fe.Err,
	)
	return domain.Rejected(domain.ReasonProcessingError, fe.Diagnostic(), claim)
}

// guard runs one store call under the store timeout.
//
// The call runs on its own goroutine so that a store which ignores context
// cancellation still cannot hold the claim past the timeout. Panics in the
// store are recovered and reported as faults.
func (e *Engine) guard(ctx context.Context, op string, call func(context.Context) error) error {
	_, err := e.run(ctx, op, call)
	return err
}

// run is guard for calls with side effects. When the call is abandoned at
// the deadline, late delivers its eventual result; otherwise late is nil.
func (e *Engine) run(ctx context.Context, op string, call func(context.Context) error) (late <-chan error, err error) {
	callCtx := ctx
	cancel := func() {}
	if e.storeTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.storeTimeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- call(callCtx)
	}()

	select {
	case err := <-done:
		return nil, e.classify(ctx, callCtx, op, err)
	case <-callCtx.Done():
		// Prefer a result that raced with the deadline.
		select {
		case err := <-done:
			return nil, e.classify(ctx, callCtx, op, err)
		default:
		}
		return done, e.classify(ctx, callCtx, op, callCtx.Err())
	}
}

// settleCall waits up to the settle timeout for an abandoned call. settled
// is false if the call is still running; err is the call's own result.
func (e *Engine) settleCall(late <-chan error) (settled bool, err error) {
	if e.settle <= 0 {
		return false, nil
	}
	timer := time.NewTimer(e.settle)
	defer timer.Stop()
	select {
	case err := <-late:
		return true, err
	case <-timer.C:
		return false, nil
	}
}

func (e *Engine) classify(ctx, callCtx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	code := ErrCodeStoreFault
	switch {
	case ctx.Err() != nil:
		code = ErrCodeCanceled
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		code = ErrCodeStoreTimeout
	}
	return &FaultError{Code: code, Op: op, Err: err}
}
