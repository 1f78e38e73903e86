package webgraph

import (
	"context"
	"time"
)

// GraphStore loads and persists graph snapshots.
type GraphStore interface {
	// Load reads the most recent snapshot. Implementations return an
	// error for a missing or unreadable snapshot; callers decide
	// whether that is fatal.
	Load(ctx context.Context) (Graph, error)
	// Save persists a full snapshot, retaining one previous generation.
	Save(ctx context.Context, g Graph) error
	// Close releases any underlying resources.
	Close()
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
