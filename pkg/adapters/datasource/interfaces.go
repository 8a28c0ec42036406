// Package datasource defines the common contract backend adapters implement
// and the registry they register with. Each backend lives in its own
// subpackage and registers itself in init().
package datasource

import (
	"context"

	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// MaxQueryLimit is the hard cap on rows returned by any read operation.
// Protects the server from unbounded result sets.
const MaxQueryLimit = 1000

// ClampLimit normalizes a requested row limit into [1, MaxQueryLimit].
// Callers supply their own defaults before the limit reaches an adapter;
// anything non-positive that still arrives here floors to a single row, never
// the cap.
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

// Adapter is the per-call handle on one data source. Implementations own a
// dedicated connection opened by their factory; callers must Close on every
// exit path.
type Adapter interface {
	// ListTables returns the user-visible table (or collection) names.
	ListTables(ctx context.Context) ([]string, error)

	// GetRows reads up to limit rows from a table. The table's existence is
	// checked first; a missing table is a NotFound error, never a raw driver
	// error.
	GetRows(ctx context.Context, table string, limit int) (*TableRows, error)

	// RunQuery executes validated query text with named parameters, bounded
	// by limit. For SQL backends the text has already passed the read-only
	// guard; for MongoDB it is a bare collection name.
	RunQuery(ctx context.Context, queryText string, params map[string]any, limit int) (*models.QueryExecutionResult, error)

	// TestConnection verifies reachability and returns the table list as
	// proof of access.
	TestConnection(ctx context.Context) (*ConnectionTestResult, error)

	// Close releases the underlying connection.
	Close() error
}

// TableRows is a bounded page of rows read straight from a table.
type TableRows struct {
	Table    string           `json:"table"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// ConnectionTestResult reports the outcome of a connectivity check.
type ConnectionTestResult struct {
	OK     bool     `json:"ok"`
	Tables []string `json:"tables"`
}
