// Package memory provides an in-memory graph store for tests and for
// embedding without durability.
package memory

import (
	"context"
	"errors"

	"github.com/spiderline/webgraph/internal/webgraph"
)

// ErrNoSnapshot is returned by Load before the first Save.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store keeps the latest graph snapshot in memory.
type Store struct {
	snapshot *webgraph.Graph
	saves    int
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// Load returns a copy of the stored snapshot, or ErrNoSnapshot when
// nothing has been saved yet.
func (s *Store) Load(_ context.Context) (webgraph.Graph, error) {
	if s.snapshot == nil {
		return webgraph.Graph{}, ErrNoSnapshot
	}
	return s.snapshot.Clone(), nil
}

// Save stores a copy of g as the current snapshot.
func (s *Store) Save(_ context.Context, g webgraph.Graph) error {
	snap := g.Clone()
	s.snapshot = &snap
	s.saves++
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() {}

// Saves returns how many times Save has been called, for tests that
// assert persistence happens after each mutation.
func (s *Store) Saves() int {
	return s.saves
}
