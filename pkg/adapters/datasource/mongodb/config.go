package mongodb

import "fmt"

// Config contains MongoDB connection options.
type Config struct {
	URI      string
	Database string
}

// FromMap creates a Config from a decrypted connection map.
func FromMap(connection map[string]any) (*Config, error) {
	cfg := &Config{}

	for _, key := range []string{"uri", "connectionString", "url"} {
		if uri, ok := connection[key].(string); ok && uri != "" {
			cfg.URI = uri
			break
		}
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}

	if database, ok := connection["database"].(string); ok && database != "" {
		cfg.Database = database
	} else {
		return nil, fmt.Errorf("database is required")
	}

	return cfg, nil
}
