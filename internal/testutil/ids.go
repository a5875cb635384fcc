package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable run identifiers.
//
// Unlike the uuid generator used in production, the same test produces the
// same identifiers every time: "<prefix>-0001", "<prefix>-0002", ...
//
// Thread-safety: Safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix means "run".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next identifier.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
