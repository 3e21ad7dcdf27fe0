package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/bookkeeper/internal/domain"
)

// Runner reconciles a stream of claims on a fixed pool of workers.
//
// Claims are submitted with Submit from any goroutine. Run blocks until the
// runner is closed and every submitted claim has been handled, or until ctx
// ends. Each claim's Result is passed to handle exactly once; handle is
// called from worker goroutines and must be safe for concurrent use.
type Runner struct {
	engine  *Engine
	workers int
	handle  func(Result)
	queue   *claimQueue
}

// NewRunner creates a runner with the given worker count (minimum 1).
func NewRunner(e *Engine, workers int, handle func(Result)) *Runner {
	if workers < 1 {
		workers = 1
	}
	if handle == nil {
		handle = func(Result) {}
	}
	return &Runner{
		engine:  e,
		workers: workers,
		handle:  handle,
		queue:   newClaimQueue(),
	}
}

// Submit queues a claim. Returns false once the runner is closed.
// A claim without an ID is assigned one here.
func (r *Runner) Submit(c domain.Claim) bool {
	if c.ID == "" {
		c.ID = r.engine.claimIDs.Generate()
	}
	return r.queue.Enqueue(c)
}

// Close stops intake. Queued claims are still processed.
func (r *Runner) Close() {
	r.queue.Close()
}

// Pending returns the number of claims waiting for a worker.
func (r *Runner) Pending() int {
	return r.queue.Len()
}

// Run processes claims until the runner is closed and drained.
// Returns ctx.Err() if ctx ends first; claims still queued are not handled.
func (r *Runner) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			return r.work(gctx)
		})
	}
	err := g.Wait()
	if err != nil {
		slog.Warn("runner stopped", "pending", r.queue.Len(), "error", err)
	}
	return err
}

func (r *Runner) work(ctx context.Context) error {
	for {
		if c, ok := r.queue.TryDequeue(); ok {
			v, err := r.engine.Reconcile(ctx, c)
			r.handle(Result{Claim: c, Verdict: v, Err: err})
			continue
		}
		if r.queue.Drained() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.queue.Wait():
		}
	}
}
