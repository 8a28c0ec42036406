package models

import (
	"time"

	"github.com/google/uuid"
)

// WritableTable is an administrator-curated table exposed for restricted
// insert/update by editors. The owning data source must be PostgreSQL.
//
// AllowedColumns nil means every schema column is writable; when set it is
// the authoritative ceiling regardless of what the live schema exposes.
type WritableTable struct {
	ID             uuid.UUID `json:"id"`
	DataSourceID   uuid.UUID `json:"data_source_id"`
	TableName      string    `json:"table_name"`
	AllowedColumns []string  `json:"allowed_columns,omitempty"`
	AllowInsert    bool      `json:"allow_insert"`
	AllowUpdate    bool      `json:"allow_update"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
