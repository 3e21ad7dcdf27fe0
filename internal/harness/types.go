package harness

// TraceEvent records the verdict for one claim step.
type TraceEvent struct {
	Step      int    `json:"step"`
	ClaimID   string `json:"claim_id"`
	VendorID  string `json:"vendor_id"`
	InvoiceID string `json:"invoice_id"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Label is the reason for rejections and "accepted" otherwise. Trace
// assertions match on labels.
func (e TraceEvent) Label() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Outcome
}

// LedgerRow is one invoice in the final ledger snapshot.
type LedgerRow struct {
	InvoiceID string `json:"invoice_id"`
	VendorID  string `json:"vendor_id"`
	Amount    string `json:"amount"`
	Paid      bool   `json:"paid"`
	EnteredAt string `json:"entered_at"`
	ClaimID   string `json:"claim_id,omitempty"`
}

// ReviewRow is one entry in the final review queue snapshot.
type ReviewRow struct {
	Seq       int64  `json:"seq"`
	Reason    string `json:"reason"`
	ClaimID   string `json:"claim_id"`
	InvoiceID string `json:"invoice_id"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per claim in submission order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Ledger and Reviews snapshot the stores after the last claim.
	Ledger  []LedgerRow `json:"ledger"`
	Reviews []ReviewRow `json:"reviews"`

	// Claims is the number of claims submitted.
	Claims int `json:"claims"`

	// SeededInvoices is the number of invoices present before the first claim.
	SeededInvoices int `json:"seeded_invoices"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Ledger:  []LedgerRow{},
		Reviews: []ReviewRow{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step's verdict to the trace.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
