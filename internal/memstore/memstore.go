// Package memstore provides in-memory implementations of the vendor
// registry, invoice ledger and review sink.
//
// Each type guards its state with a mutex. The ledger holds its lock across
// the existence check and the write in InsertInvoice, which gives it the
// same single-writer uniqueness guarantee as the SQLite store.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/bookkeeper/internal/domain"
)

// ErrNotFound is returned by mutations that target a missing record.
var ErrNotFound = errors.New("not found")

// Registry is an in-memory vendor registry.
type Registry struct {
	mu      sync.RWMutex
	vendors map[string]domain.Vendor
}

// NewRegistry creates a registry holding the given vendors.
func NewRegistry(vendors ...domain.Vendor) *Registry {
	r := &Registry{vendors: make(map[string]domain.Vendor, len(vendors))}
	for _, v := range vendors {
		r.vendors[v.ID] = v
	}
	return r
}

// LookupVendor returns the vendor with the given ID.
func (r *Registry) LookupVendor(ctx context.Context, id string) (domain.Vendor, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Vendor{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vendors[id]
	return v, ok, nil
}

// PutVendor registers or replaces a vendor.
func (r *Registry) PutVendor(ctx context.Context, v domain.Vendor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.ID == "" {
		return fmt.Errorf("put vendor: vendor id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vendors[v.ID] = v
	return nil
}

// SetVendorActive flips a vendor's active flag.
func (r *Registry) SetVendorActive(ctx context.Context, id string, active bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[id]
	if !ok {
		return fmt.Errorf("set vendor active %q: %w", id, ErrNotFound)
	}
	v.Active = active
	r.vendors[id] = v
	return nil
}

// Ledger is an in-memory invoice ledger.
type Ledger struct {
	mu       sync.Mutex
	invoices map[string]domain.Invoice
}

// NewLedger creates a ledger holding the given invoices.
func NewLedger(invoices ...domain.Invoice) *Ledger {
	l := &Ledger{invoices: make(map[string]domain.Invoice, len(invoices))}
	for _, inv := range invoices {
		l.invoices[inv.ID] = inv
	}
	return l
}

// LookupInvoice returns the invoice with the given ID.
func (l *Ledger) LookupInvoice(ctx context.Context, id string) (domain.Invoice, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invoice{}, false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invoices[id]
	return inv, ok, nil
}

// InsertInvoice records an invoice unless its ID is already present.
func (l *Ledger) InsertInvoice(ctx context.Context, inv domain.Invoice) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if inv.Amount.IsNegative() {
		return false, fmt.Errorf("insert invoice: amount must be non-negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.invoices[inv.ID]; exists {
		return false, nil
	}
	l.invoices[inv.ID] = inv
	return true, nil
}

// MarkInvoicePaid flips an invoice's paid flag.
func (l *Ledger) MarkInvoicePaid(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invoices[id]
	if !ok {
		return fmt.Errorf("mark invoice paid %q: %w", id, ErrNotFound)
	}
	inv.Paid = true
	l.invoices[id] = inv
	return nil
}

// ListInvoices returns a snapshot of the ledger ordered by invoice ID.
func (l *Ledger) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Invoice, 0, len(l.invoices))
	for _, inv := range l.invoices {
		out = append(out, inv)
	}
	slices.SortFunc(out, func(a, b domain.Invoice) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// CountInvoices returns the number of recorded invoices.
func (l *Ledger) CountInvoices(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.invoices), nil
}

// Sink is an in-memory append-only review queue.
type Sink struct {
	mu      sync.Mutex
	entries []domain.ReviewEntry
	seq     int64
}

// NewSink creates an empty review sink.
func NewSink() *Sink {
	return &Sink{}
}

// EnqueueReview appends a review entry, assigning its sequence number.
func (s *Sink) EnqueueReview(ctx context.Context, entry domain.ReviewEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	entry.Seq = s.seq
	s.entries = append(s.entries, entry)
	return nil
}

// ListReviews returns up to limit entries in append order.
// A limit of zero or less returns every entry.
func (s *Sink) ListReviews(ctx context.Context, limit int) ([]domain.ReviewEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(s.entries[:n]), nil
}

// CountReviews returns the number of queued entries.
func (s *Sink) CountReviews(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}
