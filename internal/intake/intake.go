package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bookkeeper/internal/domain"
)

// claimRecord is the on-disk shape of a claim. Amount stays a string until
// the schema has accepted it.
type claimRecord struct {
	ClaimID       string `yaml:"claim_id" json:"claim_id,omitempty"`
	Sender        string `yaml:"sender" json:"sender"`
	VendorID      string `yaml:"vendor_id" json:"vendor_id"`
	InvoiceID     string `yaml:"invoice_id" json:"invoice_id"`
	Amount        string `yaml:"amount" json:"amount"`
	AttachmentRef string `yaml:"attachment_ref" json:"attachment_ref,omitempty"`
	Body          string `yaml:"body" json:"body,omitempty"`
}

type claimBatch struct {
	Claims []claimRecord `yaml:"claims" json:"claims"`
}

type vendorRecord struct {
	VendorID string `yaml:"vendor_id" json:"vendor_id"`
	Name     string `yaml:"name" json:"name,omitempty"`
	Email    string `yaml:"email" json:"email"`
	Active   *bool  `yaml:"active" json:"active,omitempty"`
}

type invoiceRecord struct {
	InvoiceID string `yaml:"invoice_id" json:"invoice_id"`
	VendorID  string `yaml:"vendor_id" json:"vendor_id"`
	Amount    string `yaml:"amount" json:"amount"`
	Paid      bool   `yaml:"paid" json:"paid,omitempty"`
	EnteredAt string `yaml:"entered_at" json:"entered_at,omitempty"`
}

type seedFile struct {
	Vendors  []vendorRecord  `yaml:"vendors" json:"vendors,omitempty"`
	Invoices []invoiceRecord `yaml:"invoices" json:"invoices,omitempty"`
}

// Seed is a parsed registry seed file.
type Seed struct {
	Vendors  []domain.Vendor
	Invoices []domain.Invoice
}

// LoadClaims reads and validates a claim batch file.
func LoadClaims(path string) ([]domain.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	claims, err := ParseClaims(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return claims, nil
}

// ParseClaims decodes and validates a claim batch document.
func ParseClaims(data []byte) ([]domain.Claim, error) {
	var batch claimBatch
	if err := decodeStrict(data, &batch); err != nil {
		return nil, err
	}
	if err := validate("#ClaimBatch", batch); err != nil {
		return nil, err
	}

	claims := make([]domain.Claim, 0, len(batch.Claims))
	for i, r := range batch.Claims {
		c, err := r.toClaim(fmt.Sprintf("claims.%d.amount", i))
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// ParseClaim decodes and validates a single claim object, as sent one per
// line on a claim stream.
func ParseClaim(data []byte) (domain.Claim, error) {
	var r claimRecord
	if err := decodeStrict(data, &r); err != nil {
		return domain.Claim{}, err
	}
	if err := validate("#Claim", r); err != nil {
		return domain.Claim{}, err
	}
	return r.toClaim("amount")
}

func (r claimRecord) toClaim(amountPath string) (domain.Claim, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Claim{}, &ValidationError{Path: amountPath, Message: err.Error()}
	}
	return domain.Claim{
		ID:            r.ClaimID,
		Sender:        r.Sender,
		VendorID:      r.VendorID,
		InvoiceID:     r.InvoiceID,
		Amount:        amount,
		AttachmentRef: r.AttachmentRef,
		Body:          r.Body,
	}, nil
}

// LoadSeed reads and validates a registry seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes and validates a seed document. Vendors default to
// active. Invoices without entered_at get the zero time; ApplySeed stamps
// them.
func ParseSeed(data []byte) (*Seed, error) {
	var file seedFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, err
	}
	if err := validate("#Seed", file); err != nil {
		return nil, err
	}

	seed := &Seed{}
	for _, r := range file.Vendors {
		active := true
		if r.Active != nil {
			active = *r.Active
		}
		seed.Vendors = append(seed.Vendors, domain.Vendor{
			ID:     r.VendorID,
			Name:   r.Name,
			Email:  r.Email,
			Active: active,
		})
	}
	for i, r := range file.Invoices {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("invoices.%d.amount", i), Message: err.Error()}
		}
		var entered time.Time
		if r.EnteredAt != "" {
			entered, err = time.Parse(time.RFC3339, r.EnteredAt)
			if err != nil {
				return nil, &ValidationError{Path: fmt.Sprintf("invoices.%d.entered_at", i), Message: err.Error()}
			}
		}
		seed.Invoices = append(seed.Invoices, domain.Invoice{
			ID:        r.InvoiceID,
			VendorID:  r.VendorID,
			Amount:    amount,
			Paid:      r.Paid,
			EnteredAt: entered.UTC(),
		})
	}
	return seed, nil
}

// SeedTarget is the store surface ApplySeed writes through.
type SeedTarget interface {
	PutVendor(ctx context.Context, v domain.Vendor) error
	InsertInvoice(ctx context.Context, inv domain.Invoice) (bool, error)
}

// SeedReport counts what ApplySeed changed.
type SeedReport struct {
	Vendors  int
	Invoices int
	Skipped  int // invoices already present
}

// ApplySeed writes a seed into target. Vendors are upserted; invoices are
// inserted once, paid flag included, and existing ones are left untouched.
// Invoices lacking an entry time are stamped with now.
func ApplySeed(ctx context.Context, target SeedTarget, seed *Seed, now time.Time) (SeedReport, error) {
	var report SeedReport
	for _, v := range seed.Vendors {
		if err := target.PutVendor(ctx, v); err != nil {
			return report, fmt.Errorf("seed vendor %s: %w", v.ID, err)
		}
		report.Vendors++
	}
	for _, inv := range seed.Invoices {
		if inv.EnteredAt.IsZero() {
			inv.EnteredAt = now.UTC()
		}
		// One insert carries the paid flag; a failure leaves no row behind.
		inserted, err := target.InsertInvoice(ctx, inv)
		if err != nil {
			return report, fmt.Errorf("seed invoice %s: %w", inv.ID, err)
		}
		if !inserted {
			report.Skipped++
			continue
		}
		report.Invoices++
	}
	return report, nil
}

// decodeStrict decodes a single YAML document, rejecting unknown fields.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Message: "empty document"}
		}
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
