package models

// QueryExecutionResult holds the rows produced by a data source query.
// Columns preserves the result's column order; Rows map column name to value.
type QueryExecutionResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}
