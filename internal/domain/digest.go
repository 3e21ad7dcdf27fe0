package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainClaim separates claim digests from any other hashed content.
// The version suffix allows future algorithm migration.
const DomainClaim = "bookkeeper/claim/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ClaimDigest computes a content address for the fields a vendor asserted.
//
// The correlation ID and the Problem annotation are excluded: two deliveries
// of the same email digest identically, which lets reviewers spot resubmits.
func ClaimDigest(c Claim) (string, error) {
	obj := map[string]any{
		"sender":         c.Sender,
		"vendor_id":      c.VendorID,
		"invoice_id":     c.InvoiceID,
		"amount":         c.Amount.String(),
		"attachment_ref": c.AttachmentRef,
		"body":           c.Body,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("claim digest: %w", err)
	}
	return hashWithDomain(DomainClaim, canonical), nil
}

// MustClaimDigest is like ClaimDigest but panics on error.
// Use only in tests.
func MustClaimDigest(c Claim) string {
	d, err := ClaimDigest(c)
	if err != nil {
		panic(err)
	}
	return d
}
