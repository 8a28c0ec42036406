package duckdb

import "fmt"

// MemoryPath is the in-memory database spelling. Unlike SQLite, an
// in-memory DuckDB source is legitimate operationally: queries can read
// external files (CSV, Parquet) without a database file.
const MemoryPath = ":memory:"

// Config contains DuckDB connection options.
type Config struct {
	Path string
}

// FromMap creates a Config from a decrypted connection map.
func FromMap(connection map[string]any) (*Config, error) {
	for _, key := range []string{"filepath", "path", "database"} {
		if path, ok := connection[key].(string); ok && path != "" {
			return &Config{Path: path}, nil
		}
	}
	return nil, fmt.Errorf("filepath is required")
}

// IsMemory reports whether the config names the in-memory database.
func (c *Config) IsMemory() bool {
	return c.Path == MemoryPath
}
