package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/domain"
	"github.com/roach88/bookkeeper/internal/memstore"
)

func TestFaultyRegistry_PassThrough(t *testing.T) {
	inner := memstore.NewRegistry(domain.Vendor{ID: "V1", Email: "a@b.c", Active: true})
	r := &FaultyRegistry{Inner: inner}

	v, found, err := r.LookupVendor(context.Background(), "V1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a@b.c", v.Email)
	assert.Equal(t, int64(1), r.Calls())
}

func TestFaultyRegistry_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	r := &FaultyRegistry{Inner: memstore.NewRegistry(), Fault: Fault{Err: boom}}

	_, _, err := r.LookupVendor(context.Background(), "V1")
	assert.ErrorIs(t, err, boom)
}

func TestFaultyLedger_Panics(t *testing.T) {
	l := &FaultyLedger{Inner: memstore.NewLedger(), InsertFault: Fault{Panic: "kaboom"}}

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = l.InsertInvoice(context.Background(), domain.Invoice{ID: "I1", Amount: decimal.NewFromInt(1)})
	})
	assert.Equal(t, int64(1), l.InsertCalls())
}

func TestFault_DelayHonorsContext(t *testing.T) {
	s := &FaultySink{Inner: memstore.NewSink(), Fault: Fault{Delay: time.Hour}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.EnqueueReview(ctx, domain.ReviewEntry{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFault_DetachCommitsLate(t *testing.T) {
	inner := memstore.NewLedger()
	l := &FaultyLedger{Inner: inner, InsertFault: Fault{Delay: 30 * time.Millisecond, IgnoreContext: true, Detach: true}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	inserted, err := l.InsertInvoice(ctx, domain.Invoice{ID: "I1", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, inserted, "the write lands although the caller's deadline passed")

	n, err := inner.CountInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFault_ErrAfterWrite(t *testing.T) {
	lost := errors.New("ack lost")
	inner := memstore.NewSink()
	s := &FaultySink{Inner: inner, Fault: Fault{ErrAfter: lost}}

	err := s.EnqueueReview(context.Background(), domain.ReviewEntry{Reason: domain.ReasonSenderMismatch})
	assert.ErrorIs(t, err, lost)

	n, err := inner.CountReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
