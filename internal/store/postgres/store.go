// Package postgres provides a Postgres-backed graph store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spiderline/webgraph/internal/webgraph"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for graph snapshots.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store persists graph snapshots as JSONB rows. Two rows at most exist
// per table: the current generation and the previous one, mirroring the
// primary/backup rotation of the file store.
type Store struct {
	pool  querier
	table string
}

// New creates a Postgres-backed graph store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.postgres.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "graph_snapshots"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{
		pool:  pool,
		table: table,
	}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool querier, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "graph_snapshots"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Load reads the current-generation snapshot row.
func (s *Store) Load(ctx context.Context) (webgraph.Graph, error) {
	if s == nil || s.pool == nil {
		return webgraph.Graph{}, fmt.Errorf("graph store is not configured")
	}
	query := fmt.Sprintf(`SELECT snapshot FROM %s WHERE generation = 'primary'`, s.table)
	var data []byte
	if err := s.pool.QueryRow(ctx, query).Scan(&data); err != nil {
		return webgraph.Graph{}, fmt.Errorf("select snapshot: %w", err)
	}
	var g webgraph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return webgraph.Graph{}, fmt.Errorf("decode snapshot: %w", err)
	}
	ensureMaps(&g)
	return g, nil
}

// Save rotates the generations and inserts a new current snapshot:
// delete the old backup row, relabel the current row as backup, insert
// the new row. The three statements are deliberately not wrapped in a
// transaction, matching the best-effort rotation of the file store.
func (s *Store) Save(ctx context.Context, g webgraph.Graph) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("graph store is not configured")
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	deleteBackup := fmt.Sprintf(`DELETE FROM %s WHERE generation = 'backup'`, s.table)
	if _, err := s.pool.Exec(ctx, deleteBackup); err != nil {
		return fmt.Errorf("delete backup snapshot: %w", err)
	}

	rotate := fmt.Sprintf(`UPDATE %s SET generation = 'backup' WHERE generation = 'primary'`, s.table)
	if _, err := s.pool.Exec(ctx, rotate); err != nil {
		return fmt.Errorf("rotate snapshot: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (generation, snapshot, updated_at) VALUES ('primary', $1, $2)`, s.table)
	if _, err := s.pool.Exec(ctx, insert, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

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
