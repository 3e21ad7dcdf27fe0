package domain

// Outcome is the terminal state of one reconciliation.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Verdict is the single result produced for a claim.
//
// Accepted verdicts carry the recorded Invoice. Rejected verdicts carry a
// Reason and optional Detail. Claim is always the (annotated) input claim.
type Verdict struct {
	Outcome Outcome  `json:"outcome"`
	Invoice *Invoice `json:"invoice,omitempty"`
	Reason  Reason   `json:"reason,omitempty"`
	Detail  string   `json:"detail,omitempty"`
	Claim   Claim    `json:"claim"`
}

// Accepted builds a verdict for a claim whose invoice was recorded.
func Accepted(inv Invoice, claim Claim) Verdict {
	return Verdict{Outcome: OutcomeAccepted, Invoice: &inv, Claim: claim}
}

// Rejected builds a verdict diverting the claim to review. The claim's
// Problem annotation is set from the reason.
func Rejected(reason Reason, detail string, claim Claim) Verdict {
	claim.Problem = reason.Message()
	if detail != "" {
		claim.Problem += " " + detail
	}
	return Verdict{Outcome: OutcomeRejected, Reason: reason, Detail: detail, Claim: claim}
}

// IsAccepted reports whether the claim was recorded in the ledger.
func (v Verdict) IsAccepted() bool {
	return v.Outcome == OutcomeAccepted
}

// IsRejected reports whether the claim was diverted to review.
func (v Verdict) IsRejected() bool {
	return v.Outcome == OutcomeRejected
}
