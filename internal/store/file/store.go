// Package file implements a graph store backed by a JSON file on the
// local filesystem, with a single generation of backup history.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spiderline/webgraph/internal/webgraph"
)

// Config captures the parameters for the file-backed graph store.
type Config struct {
	// Path is the primary snapshot file.
	Path string `mapstructure:"path" yaml:"path"`
	// BackupPath holds the previous generation of Path. It is rotated
	// on every successful save.
	BackupPath string `mapstructure:"backup_path" yaml:"backup_path"`
}

// Store persists graph snapshots as UTF-8 JSON.
type Store struct {
	path       string
	backupPath string
}

// New creates a file-backed graph store.
func New(cfg Config) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "graph.json"
	}
	backup := strings.TrimSpace(cfg.BackupPath)
	if backup == "" {
		backup = "graph.bak.json"
	}
	if path == backup {
		return nil, fmt.Errorf("backup path must differ from primary path")
	}
	return &Store{
		path:       path,
		backupPath: backup,
	}, nil
}

// Load reads and deserializes the primary snapshot file. A missing or
// malformed file is reported as an error; the caller decides whether
// to start from an empty graph instead.
func (s *Store) Load(_ context.Context) (webgraph.Graph, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return webgraph.Graph{}, fmt.Errorf("read snapshot: %w", err)
	}
	var g webgraph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return webgraph.Graph{}, fmt.Errorf("decode snapshot: %w", err)
	}
	ensureMaps(&g)
	return g, nil
}

// Save rotates the backup and writes a new primary snapshot: the old
// backup is deleted, the current primary becomes the backup, then the
// new snapshot is written. The protocol is best-effort rather than
// atomic: a crash mid-rotation can lose the only prior generation on
// the very first save, and a crash after the rename leaves the
// previous generation in the backup file.
func (s *Store) Save(_ context.Context, g webgraph.Graph) error {
	if _, err := os.Stat(s.backupPath); err == nil {
		if err := os.Remove(s.backupPath); err != nil {
			return fmt.Errorf("remove backup: %w", err)
		}
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := os.Rename(s.path, s.backupPath); err != nil {
			return fmt.Errorf("rotate snapshot: %w", err)
		}
	}

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close() {}

func ensureMaps(g *webgraph.Graph) {
	if g.Domains == nil {
		g.Domains = make(map[string]webgraph.DomainInfo)
	}
	if g.Visited == nil {
		g.Visited = make(map[string]int64)
	}
	if g.Redirects == nil {
		g.Redirects = make(map[string]string)
	}
}
