package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/domain"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(domain.Vendor{ID: "V1", Email: "a@x.com", Active: true})
	ctx := context.Background()

	v, found, err := r.LookupVendor(ctx, "V1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a@x.com", v.Email)

	_, found, err = r.LookupVendor(ctx, "V2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegistry_SetVendorActive(t *testing.T) {
	r := NewRegistry(domain.Vendor{ID: "V1", Active: true})
	ctx := context.Background()

	require.NoError(t, r.SetVendorActive(ctx, "V1", false))
	v, _, _ := r.LookupVendor(ctx, "V1")
	assert.False(t, v.Active)

	assert.True(t, errors.Is(r.SetVendorActive(ctx, "nope", true), ErrNotFound))
}

func TestRegistry_CancelledContext(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.LookupVendor(ctx, "V1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLedger_InsertOnce(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()
	inv := domain.Invoice{ID: "I1", VendorID: "V1", Amount: decimal.NewFromInt(500)}

	inserted, err := l.InsertInvoice(ctx, inv)
	require.NoError(t, err)
	assert.True(t, inserted)

	inv.Amount = decimal.NewFromInt(1)
	inserted, err = l.InsertInvoice(ctx, inv)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, found, err := l.LookupInvoice(ctx, "I1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, decimal.NewFromInt(500).Equal(got.Amount))
}

func TestLedger_ConcurrentInsert(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.InsertInvoice(ctx, domain.Invoice{ID: "I-race", VendorID: "V1"})
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	n, err := l.CountInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLedger_NegativeAmount(t *testing.T) {
	l := NewLedger()
	_, err := l.InsertInvoice(context.Background(), domain.Invoice{ID: "I1", Amount: decimal.NewFromInt(-1)})
	assert.Error(t, err)
}

func TestLedger_MarkPaidAndList(t *testing.T) {
	l := NewLedger(
		domain.Invoice{ID: "I2", VendorID: "V1"},
		domain.Invoice{ID: "I1", VendorID: "V1"},
	)
	ctx := context.Background()

	require.NoError(t, l.MarkInvoicePaid(ctx, "I2"))
	assert.True(t, errors.Is(l.MarkInvoicePaid(ctx, "I9"), ErrNotFound))

	list, err := l.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "I1", list[0].ID)
	assert.False(t, list[0].Paid)
	assert.True(t, list[1].Paid)
}

func TestSink_AppendAndList(t *testing.T) {
	s := NewSink()
	ctx := context.Background()

	for _, r := range []domain.Reason{domain.ReasonVendorNotFound, domain.ReasonSenderMismatch, domain.ReasonDuplicateInvoice} {
		require.NoError(t, s.EnqueueReview(ctx, domain.ReviewEntry{Reason: r}))
	}

	all, err := s.ListReviews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Seq)
	assert.Equal(t, int64(3), all[2].Seq)
	assert.Equal(t, domain.ReasonSenderMismatch, all[1].Reason)

	two, err := s.ListReviews(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	n, err := s.CountReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
