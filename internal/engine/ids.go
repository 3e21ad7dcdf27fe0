package engine

import (
	"sync"

	"github.com/google/uuid"
)

// ClaimIDGenerator assigns correlation IDs to claims that arrive without one.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type ClaimIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 claim IDs, so review
// entries and ledger rows sort by intake time when inspected by hand.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined claim IDs in order.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed, which means a test submitted more
// claims than it planned for.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all claim ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
