package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryVariable describes one named parameter a saved query accepts.
// For MongoDB sources the saved query has no variables; its text is a
// bare collection name rather than SQL.
type QueryVariable struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// SavedQuery is a stored, named, parameterized read-only query bound to one
// data source. QueryText uses :name placeholders for all SQL backends.
type SavedQuery struct {
	ID           uuid.UUID       `json:"id"`
	DataSourceID uuid.UUID       `json:"data_source_id"`
	Name         string          `json:"name"`
	QueryText    string          `json:"query_text"`
	Variables    []QueryVariable `json:"variables,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
