// Package config loads and validates link-graph manager configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StoreConfig selects and configures the graph persistence backend.
type StoreConfig struct {
	// Provider is one of "file", "postgres", or "memory".
	Provider string         `mapstructure:"provider"`
	File     FileConfig     `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// FileConfig holds paths for the file-backed store.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	BackupPath string `mapstructure:"backup_path"`
}

// PostgresConfig controls access to the snapshot table.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// PolicyConfig governs revisit and purge behavior.
type PolicyConfig struct {
	RevisitWindowSeconds int      `mapstructure:"revisit_window_seconds"`
	RefetchEmptySites    bool     `mapstructure:"refetch_empty_sites"`
	DenyHosts            []string `mapstructure:"deny_hosts"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WEBGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.provider", "file")
	v.SetDefault("store.file.path", "graph.json")
	v.SetDefault("store.file.backup_path", "graph.bak.json")
	v.SetDefault("store.postgres.table", "graph_snapshots")
	v.SetDefault("policy.revisit_window_seconds", 604800)
	v.SetDefault("policy.refetch_empty_sites", false)
	v.SetDefault("policy.deny_hosts", []string{"youtube.com"})
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	switch c.Store.Provider {
	case "file", "memory":
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn must be set when store.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	if c.Policy.RevisitWindowSeconds <= 0 {
		return fmt.Errorf("policy.revisit_window_seconds must be > 0")
	}
	return nil
}

// RevisitWindow converts the configured window into a duration.
func (c Config) RevisitWindow() time.Duration {
	return time.Duration(c.Policy.RevisitWindowSeconds) * time.Second
}
