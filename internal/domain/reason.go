package domain

// Reason explains why a claim was diverted to human review.
type Reason string

const (
	ReasonVendorNotFound     Reason = "vendor_not_found"
	ReasonVendorInactive     Reason = "vendor_inactive"
	ReasonSenderMismatch     Reason = "sender_mismatch"
	ReasonInvoiceAlreadyPaid Reason = "invoice_already_paid"
	ReasonDuplicateInvoice   Reason = "duplicate_invoice"
	ReasonProcessingError    Reason = "processing_error"
)

var reasonMessages = map[Reason]string{
	ReasonVendorNotFound:     "Vendor not found.",
	ReasonVendorInactive:     "Vendor is inactive.",
	ReasonSenderMismatch:     "Sender email does not match vendor record.",
	ReasonInvoiceAlreadyPaid: "Invoice already exists and is paid.",
	ReasonDuplicateInvoice:   "Invoice is already recorded in the ledger.",
	ReasonProcessingError:    "Error during processing.",
}

// Message returns the reviewer-facing description of the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Unknown issue."
}

// IsBusiness reports whether the reason is an expected business rejection
// rather than an infrastructure fault.
func (r Reason) IsBusiness() bool {
	switch r {
	case ReasonVendorNotFound, ReasonVendorInactive, ReasonSenderMismatch,
		ReasonInvoiceAlreadyPaid, ReasonDuplicateInvoice:
		return true
	}
	return false
}

// Valid reports whether r is one of the known reason codes.
func (r Reason) Valid() bool {
	_, ok := reasonMessages[r]
	return ok
}
