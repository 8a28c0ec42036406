package sqlite

import "fmt"

// Config contains SQLite connection options. Path is relative to the
// engine's data directory; the factory resolves and confines it.
type Config struct {
	Path string
}

// FromMap creates a Config from a decrypted connection map. "filepath",
// "path" and "database" are accepted spellings.
func FromMap(connection map[string]any) (*Config, error) {
	for _, key := range []string{"filepath", "path", "database"} {
		if path, ok := connection[key].(string); ok && path != "" {
			return &Config{Path: path}, nil
		}
	}
	return nil, fmt.Errorf("filepath is required")
}
