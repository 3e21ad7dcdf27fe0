package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/roach88/bookkeeper/internal/domain"
)

// Fault describes a misbehavior to inject into a store call.
// The zero Fault passes every call through untouched.
type Fault struct {
	// Err is returned instead of calling the wrapped store.
	Err error

	// Delay stalls the call before it proceeds.
	Delay time.Duration

	// IgnoreContext makes Delay uninterruptible, simulating a store that
	// does not honor cancellation.
	IgnoreContext bool

	// Panic, when non-nil, is raised instead of calling the wrapped store.
	Panic any

	// Detach hands the wrapped store a context without cancellation, so a
	// delayed call still commits after its caller gave up.
	Detach bool

	// ErrAfter is returned once the wrapped store call has succeeded,
	// simulating an acknowledgement lost after the write landed.
	ErrAfter error
}

// apply runs the fault. A non-nil return short-circuits the call.
func (f Fault) apply(ctx context.Context) error {
	if f.Delay > 0 {
		if f.IgnoreContext {
			time.Sleep(f.Delay)
		} else {
			timer := time.NewTimer(f.Delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	if f.Panic != nil {
		panic(f.Panic)
	}
	return f.Err
}

// inner returns the context the wrapped store sees.
func (f Fault) inner(ctx context.Context) context.Context {
	if f.Detach {
		return context.WithoutCancel(ctx)
	}
	return ctx
}

type vendorLookup interface {
	LookupVendor(ctx context.Context, id string) (domain.Vendor, bool, error)
}

type invoiceLedger interface {
	LookupInvoice(ctx context.Context, id string) (domain.Invoice, bool, error)
	InsertInvoice(ctx context.Context, inv domain.Invoice) (bool, error)
}

type reviewSink interface {
	EnqueueReview(ctx context.Context, entry domain.ReviewEntry) error
}

// FaultyRegistry wraps a vendor registry and injects Fault into lookups.
type FaultyRegistry struct {
	Inner vendorLookup
	Fault Fault
	calls atomic.Int64
}

// LookupVendor applies the fault, then delegates.
func (r *FaultyRegistry) LookupVendor(ctx context.Context, id string) (domain.Vendor, bool, error) {
	r.calls.Add(1)
	if err := r.Fault.apply(ctx); err != nil {
		return domain.Vendor{}, false, err
	}
	return r.Inner.LookupVendor(ctx, id)
}

// Calls returns the number of lookups attempted.
func (r *FaultyRegistry) Calls() int64 { return r.calls.Load() }

// FaultyLedger wraps an invoice ledger with separate faults for reads and
// inserts.
type FaultyLedger struct {
	Inner       invoiceLedger
	LookupFault Fault
	InsertFault Fault
	insertCalls atomic.Int64
	lookupCalls atomic.Int64
}

// LookupInvoice applies LookupFault, then delegates.
func (l *FaultyLedger) LookupInvoice(ctx context.Context, id string) (domain.Invoice, bool, error) {
	l.lookupCalls.Add(1)
	if err := l.LookupFault.apply(ctx); err != nil {
		return domain.Invoice{}, false, err
	}
	return l.Inner.LookupInvoice(ctx, id)
}

// InsertInvoice applies InsertFault, then delegates.
func (l *FaultyLedger) InsertInvoice(ctx context.Context, inv domain.Invoice) (bool, error) {
	l.insertCalls.Add(1)
	if err := l.InsertFault.apply(ctx); err != nil {
		return false, err
	}
	inserted, err := l.Inner.InsertInvoice(l.InsertFault.inner(ctx), inv)
	if err == nil && l.InsertFault.ErrAfter != nil {
		return inserted, l.InsertFault.ErrAfter
	}
	return inserted, err
}

// InsertCalls returns the number of inserts attempted.
func (l *FaultyLedger) InsertCalls() int64 { return l.insertCalls.Load() }

// LookupCalls returns the number of lookups attempted.
func (l *FaultyLedger) LookupCalls() int64 { return l.lookupCalls.Load() }

// FaultySink wraps a review sink and injects Fault into enqueues.
type FaultySink struct {
	Inner reviewSink
	Fault Fault
	calls atomic.Int64
}

// EnqueueReview applies the fault, then delegates.
func (s *FaultySink) EnqueueReview(ctx context.Context, entry domain.ReviewEntry) error {
	s.calls.Add(1)
	if err := s.Fault.apply(ctx); err != nil {
		return err
	}
	if err := s.Inner.EnqueueReview(s.Fault.inner(ctx), entry); err != nil {
		return err
	}
	return s.Fault.ErrAfter
}

// Calls returns the number of enqueues attempted.
func (s *FaultySink) Calls() int64 { return s.calls.Load() }
