package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/bookkeeper/internal/domain"
)

// Result pairs a claim with its outcome.
// Exactly one of Verdict (non-zero Outcome) or Err is set.
type Result struct {
	Claim   domain.Claim
	Verdict domain.Verdict
	Err     error
}

// ReconcileAll reconciles claims with at most workers concurrent calls.
//
// Results are index-aligned with claims. Claim IDs are assigned before any
// work starts, so a result can be correlated even when it carries an error.
// One claim's failure never stops the others.
func (e *Engine) ReconcileAll(ctx context.Context, claims []domain.Claim, workers int) []Result {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(claims))
	for i, c := range claims {
		if c.ID == "" {
			c.ID = e.claimIDs.Generate()
		}
		results[i].Claim = c
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range results {
		i := i
		g.Go(func() error {
			v, err := e.Reconcile(ctx, results[i].Claim)
			results[i].Verdict = v
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Summary tallies a batch.
type Summary struct {
	Accepted int
	Rejected int
	Failed   int
	ByReason map[domain.Reason]int
}

// Summarize counts outcomes in results.
func Summarize(results []Result) Summary {
	s := Summary{ByReason: make(map[domain.Reason]int)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Verdict.IsAccepted():
			s.Accepted++
		default:
			s.Rejected++
			s.ByReason[r.Verdict.Reason]++
		}
	}
	return s
}
