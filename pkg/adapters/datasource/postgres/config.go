package postgres

import (
	"fmt"
	"net/url"
)

// Config contains PostgreSQL connection options. Either URI is set, or the
// individual fields are.
type Config struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// MaxConns caps the per-call pool. Zero means the default of 2, enough
	// for one query plus the existence check alongside it.
	MaxConns int32
}

// DefaultPort returns the default PostgreSQL port.
func DefaultPort() int {
	return 5432
}

// FromMap creates a Config from a decrypted connection map. A full connection
// string wins over individual fields; "connectionString", "uri" and "url" are
// all accepted spellings.
func FromMap(connection map[string]any) (*Config, error) {
	cfg := &Config{Port: DefaultPort(), SSLMode: "prefer"}

	for _, key := range []string{"connectionString", "uri", "url"} {
		if uri, ok := connection[key].(string); ok && uri != "" {
			cfg.URI = uri
			return cfg, nil
		}
	}

	if host, ok := connection["host"].(string); ok {
		cfg.Host = host
	} else {
		return nil, fmt.Errorf("host is required")
	}

	if port, ok := connection["port"].(float64); ok { // JSON numbers are float64
		cfg.Port = int(port)
	} else if port, ok := connection["port"].(int); ok {
		cfg.Port = port
	}

	if user, ok := connection["user"].(string); ok {
		cfg.User = user
	} else {
		return nil, fmt.Errorf("user is required")
	}

	if password, ok := connection["password"].(string); ok {
		cfg.Password = password
	}

	if database, ok := connection["database"].(string); ok {
		cfg.Database = database
	} else {
		return nil, fmt.Errorf("database is required")
	}

	if sslMode, ok := connection["ssl_mode"].(string); ok {
		cfg.SSLMode = sslMode
	}

	return cfg, nil
}

// ConnectionString builds a PostgreSQL URL. Credentials go through
// url.UserPassword, which applies userinfo escaping; query escaping would
// turn a space into "+", and userinfo has no decoding rule for that.
func (c *Config) ConnectionString() string {
	if c.URI != "" {
		return c.URI
	}
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
