package store

import (
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator produces ids for exported runs.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns predetermined run ids in order.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceGenerator creates a generator that returns ids in order.
//
//	gen := NewSequenceGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all ids exhausted
func NewSequenceGenerator(ids ...string) *SequenceGenerator {
	return &SequenceGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, which means a test exported more
// runs than it planned for.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
