package harness

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bookkeeper/internal/domain"
	"github.com/roach88/bookkeeper/internal/engine"
	"github.com/roach88/bookkeeper/internal/intake"
	"github.com/roach88/bookkeeper/internal/store"
	"github.com/roach88/bookkeeper/internal/testutil"
)

// Harness runs scenarios against the real engine and SQLite store.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// clock is frozen at testutil.Epoch and claim IDs are sequential, so
// identical scenarios produce identical results.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Seed vendors and invoices
// 3. Reconcile each claim, checking expect clauses
// 4. Evaluate assertions and snapshot the stores
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	seed, claims, err := decodeScenario(scenario)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if _, err := intake.ApplySeed(ctx, st, seed, testutil.Epoch); err != nil {
		return nil, fmt.Errorf("failed to apply seed: %w", err)
	}

	h := &Harness{
		store: st,
		engine: engine.New(st, st, st,
			engine.WithClock(testutil.NewSteppedClock(0)),
			engine.WithClaimIDs(testutil.NewSequentialIDs("claim")),
		),
	}

	result := NewResult()
	result.Claims = len(claims)
	result.SeededInvoices, err = st.CountInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count seeded invoices: %w", err)
	}

	if err := h.executeClaims(ctx, scenario.Claims, claims, result); err != nil {
		return nil, err
	}

	if err := h.snapshot(ctx, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// decodeScenario runs the scenario's seed and claims through the intake
// schema, so scenarios are held to the same rules as real input files.
func decodeScenario(s *Scenario) (*intake.Seed, []domain.Claim, error) {
	seedDoc, err := yaml.Marshal(map[string]any{
		"vendors":  emptyIfNil(s.Vendors),
		"invoices": emptyIfNil(s.Invoices),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode seed: %w", err)
	}
	seed, err := intake.ParseSeed(seedDoc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid seed: %w", err)
	}

	records := make([]map[string]any, len(s.Claims))
	for i, step := range s.Claims {
		records[i] = step.Claim
	}
	claimDoc, err := yaml.Marshal(map[string]any{"claims": records})
	if err != nil {
		return nil, nil, fmt.Errorf("encode claims: %w", err)
	}
	claims, err := intake.ParseClaims(claimDoc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid claims: %w", err)
	}
	return seed, claims, nil
}

func emptyIfNil(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

// executeClaims reconciles each claim in order and validates expect clauses.
func (h *Harness) executeClaims(ctx context.Context, steps []ClaimStep, claims []domain.Claim, result *Result) error {
	for i, c := range claims {
		v, err := h.engine.Reconcile(ctx, c)
		if err != nil {
			return fmt.Errorf("claim step %d: %w", i, err)
		}

		event := TraceEvent{
			Step:      i,
			ClaimID:   v.Claim.ID,
			VendorID:  v.Claim.VendorID,
			InvoiceID: v.Claim.InvoiceID,
			Outcome:   string(v.Outcome),
			Reason:    string(v.Reason),
			Detail:    v.Detail,
		}
		result.AddTrace(event)

		if exp := steps[i].Expect; exp != nil {
			if exp.Outcome != event.Outcome {
				result.AddError(fmt.Sprintf("claim step %d: expected outcome %s, got %s (%s)",
					i, exp.Outcome, event.Outcome, event.Label()))
				continue
			}
			if exp.Reason != "" && exp.Reason != event.Reason {
				result.AddError(fmt.Sprintf("claim step %d: expected reason %s, got %s",
					i, exp.Reason, event.Reason))
			}
		}
	}
	return nil
}

// snapshot copies the final ledger and review queue into the result.
func (h *Harness) snapshot(ctx context.Context, result *Result) error {
	invoices, err := h.store.ListInvoices(ctx)
	if err != nil {
		return fmt.Errorf("snapshot ledger: %w", err)
	}
	for _, inv := range invoices {
		result.Ledger = append(result.Ledger, LedgerRow{
			InvoiceID: inv.ID,
			VendorID:  inv.VendorID,
			Amount:    inv.Amount.String(),
			Paid:      inv.Paid,
			EnteredAt: inv.EnteredAt.UTC().Format(time.RFC3339),
			ClaimID:   inv.ClaimID,
		})
	}

	reviews, err := h.store.ListReviews(ctx, 0)
	if err != nil {
		return fmt.Errorf("snapshot reviews: %w", err)
	}
	for _, r := range reviews {
		result.Reviews = append(result.Reviews, ReviewRow{
			Seq:       r.Seq,
			Reason:    string(r.Reason),
			ClaimID:   r.Claim.ID,
			InvoiceID: r.Claim.InvoiceID,
		})
	}
	return nil
}
