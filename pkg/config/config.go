// Package config loads engine configuration from config.yaml with
// environment variable overrides. Secrets only come from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for openbase-engine.
// Environment variables always override YAML values for fields that support
// both; secrets (PGPASSWORD, CONNECTION_ENCRYPTION_KEY) are env-only.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Metadata store (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Data source execution settings
	Datasource DatasourceConfig `yaml:"datasource"`

	// DataDir confines file-backed data sources (SQLite, DuckDB). Relative
	// database paths resolve under this directory and may not escape it.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`

	// Key for encrypting data source connection details at rest.
	// A 32-byte base64 key (openssl rand -base64 32) or any passphrase.
	// The server fails to start without it.
	ConnectionEncryptionKey string `yaml:"-" env:"CONNECTION_ENCRYPTION_KEY"`
}

// DatabaseConfig holds the metadata store's PostgreSQL settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"openbase"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"openbase_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// DatasourceConfig holds per-call execution settings for attached
// data sources.
type DatasourceConfig struct {
	// QueryTimeoutSeconds bounds a single saved-query or write execution.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"DATASOURCE_QUERY_TIMEOUT_SECONDS" env-default:"30"`
	// ConnectTimeoutSeconds bounds establishing a connection to a data source.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" env:"DATASOURCE_CONNECT_TIMEOUT_SECONDS" env-default:"10"`
	// PoolMaxConns is the maximum number of connections opened per call.
	PoolMaxConns int32 `yaml:"pool_max_conns" env:"DATASOURCE_POOL_MAX_CONNS" env-default:"2"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is fine; the environment and defaults
// carry the whole configuration in that case.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.ConnectionEncryptionKey == "" {
		return nil, fmt.Errorf("CONNECTION_ENCRYPTION_KEY must be set")
	}

	return cfg, nil
}

// ConnectionString returns the metadata store's PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}
