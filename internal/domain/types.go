package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor is a registered supplier allowed to bill the business.
// ID is immutable once created; Active may flip through onboarding.
type Vendor struct {
	ID     string `json:"vendor_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// Invoice is a payable recorded in the ledger.
// At most one Invoice exists per ID.
type Invoice struct {
	ID            string          `json:"invoice_id"`
	VendorID      string          `json:"vendor_id"`
	Amount        decimal.Decimal `json:"amount"`
	Paid          bool            `json:"paid"`
	EnteredAt     time.Time       `json:"entered_at"`
	SenderEmail   string          `json:"sender_email,omitempty"`
	AttachmentRef string          `json:"attachment_ref,omitempty"`
	ClaimID       string          `json:"claim_id,omitempty"`
}

// Claim is an unverified assertion that a vendor issued an invoice.
// It lives for one reconciliation call; Problem is annotated on rejection.
type Claim struct {
	ID            string          `json:"claim_id,omitempty"`
	Sender        string          `json:"sender"`
	VendorID      string          `json:"vendor_id"`
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	AttachmentRef string          `json:"attachment_ref,omitempty"`
	Body          string          `json:"body,omitempty"`
	Problem       string          `json:"problem,omitempty"`
}

// ReviewEntry is one rejected claim queued for a human.
// Seq is assigned by the sink in append order.
type ReviewEntry struct {
	Seq         int64     `json:"seq"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
	Reason      Reason    `json:"reason"`
	Detail      string    `json:"detail,omitempty"`
	ClaimDigest string    `json:"claim_digest"`
	Claim       Claim     `json:"claim"`
}

// NewReviewEntry builds the sink record for a rejected claim.
func NewReviewEntry(reason Reason, detail string, claim Claim, now time.Time) (ReviewEntry, error) {
	digest, err := ClaimDigest(claim)
	if err != nil {
		return ReviewEntry{}, err
	}
	return ReviewEntry{
		EnqueuedAt:  now.UTC(),
		Reason:      reason,
		Detail:      detail,
		ClaimDigest: digest,
		Claim:       claim,
	}, nil
}
