package engine

import (
	"sync"

	"github.com/roach88/bookkeeper/internal/domain"
)

// claimQueue is a thread-safe FIFO of claims awaiting reconciliation.
//
// The queue is unbounded so intake never blocks on slow stores. Several
// workers may wait on it at once; the signal channel coalesces wakeups and
// a worker that leaves items behind re-signals so its peers keep draining.
type claimQueue struct {
	mu     sync.Mutex
	claims []domain.Claim
	closed bool
	signal chan struct{} // buffered, size 1
}

func newClaimQueue() *claimQueue {
	return &claimQueue{
		claims: make([]domain.Claim, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a claim to the back of the queue.
// Returns false if the queue is closed.
func (q *claimQueue) Enqueue(c domain.Claim) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.claims = append(q.claims, c)
	q.notify()
	return true
}

// TryDequeue removes the front claim without blocking.
// Returns (domain.Claim{}, false) if the queue is empty.
func (q *claimQueue) TryDequeue() (domain.Claim, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.claims) == 0 {
		return domain.Claim{}, false
	}

	c := q.claims[0]
	q.claims[0] = domain.Claim{} // release the body for GC
	if len(q.claims) == 1 {
		q.claims = q.claims[:0]
	} else {
		q.claims = q.claims[1:]
		q.notify()
	}
	return c, true
}

// notify wakes one waiter. Caller must hold q.mu.
func (q *claimQueue) notify() {
	if q.closed {
		return
	}
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Wait returns a channel that fires when claims may be available.
// After Close it is permanently ready.
func (q *claimQueue) Wait() <-chan struct{} {
	return q.signal
}

// Drained reports whether the queue is closed and empty.
func (q *claimQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.claims) == 0
}

// Len returns the number of queued claims.
func (q *claimQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.claims)
}

// Close stops further enqueues and wakes every waiter.
// Claims already queued stay available to TryDequeue.
func (q *claimQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
