package models

import (
	"time"

	"github.com/google/uuid"
)

// Data source types the engine can dispatch to. The set is closed: an
// unrecognized type is rejected before any connection is attempted.
const (
	DataSourceTypePostgres = "postgresql"
	DataSourceTypeMySQL    = "mysql"
	DataSourceTypeSQLite   = "sqlite"
	DataSourceTypeDuckDB   = "duckdb"
	DataSourceTypeMongoDB  = "mongodb"
)

// IsPostgresType reports whether a data source type string names PostgreSQL.
// The legacy "postgres" spelling is accepted alongside "postgresql".
func IsPostgresType(dsType string) bool {
	return dsType == DataSourceTypePostgres || dsType == "postgres"
}

// DataSource represents a registered external database connection.
// Connection holds the type-specific descriptor (host/uri/filepath/credentials);
// it is encrypted at rest by the service layer and always plaintext here.
type DataSource struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Connection map[string]any `json:"connection"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	LastSyncAt *time.Time     `json:"last_sync_at,omitempty"`
}
