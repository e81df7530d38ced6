package testutil

import "sync"

// FixedSessionGenerator returns predetermined session ids, then repeats the
// last one. Golden output that embeds session ids stays byte-identical
// across runs.
//
// Thread-safety: FixedSessionGenerator is safe for concurrent use.
type FixedSessionGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedSessionGenerator creates a generator that returns ids in order.
// With no ids it always returns "test-session".
func NewFixedSessionGenerator(ids ...string) *FixedSessionGenerator {
	if len(ids) == 0 {
		ids = []string{"test-session"}
	}
	return &FixedSessionGenerator{ids: ids}
}

// Generate returns the next id.
func (g *FixedSessionGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}
