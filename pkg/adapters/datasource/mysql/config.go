package mysql

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
)

// Config contains MySQL connection options.
type Config struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DefaultPort returns the default MySQL port.
func DefaultPort() int {
	return 3306
}

// FromMap creates a Config from a decrypted connection map. A raw DSN under
// "dsn" or "connectionString" wins over individual fields.
func FromMap(connection map[string]any) (*Config, error) {
	cfg := &Config{Port: DefaultPort()}

	for _, key := range []string{"dsn", "connectionString"} {
		if dsn, ok := connection[key].(string); ok && dsn != "" {
			cfg.DSN = dsn
			return cfg, nil
		}
	}

	if host, ok := connection["host"].(string); ok {
		cfg.Host = host
	} else {
		return nil, fmt.Errorf("host is required")
	}

	if port, ok := connection["port"].(float64); ok {
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

	return cfg, nil
}

// FormatDSN builds a go-sql-driver DSN. parseTime maps DATETIME/TIMESTAMP to
// time.Time instead of []byte; the driver's own formatter handles escaping.
func (c *Config) FormatDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	drv := gomysql.NewConfig()
	drv.User = c.User
	drv.Passwd = c.Password
	drv.Net = "tcp"
	drv.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	drv.DBName = c.Database
	drv.ParseTime = true
	return drv.FormatDSN()
}
