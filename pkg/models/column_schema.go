package models

// ColumnSchema is a point-in-time snapshot of one column, fetched live from
// information_schema per request. Schemas can change between requests, so the
// engine never caches these.
type ColumnSchema struct {
	ColumnName       string `json:"column_name"`
	DataType         string `json:"data_type"`
	IsNullable       bool   `json:"is_nullable"`
	MaxLength        *int   `json:"max_length,omitempty"`
	NumericPrecision *int   `json:"numeric_precision,omitempty"`
	NumericScale     *int   `json:"numeric_scale,omitempty"`
	UDTName          string `json:"udt_name"`
}
