package sql

import (
	"regexp"
	"strings"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

// identifierPattern is the only shape of identifier the engine will ever
// interpolate into SQL. Values are always bound; identifiers are validated
// against this pattern and then quoted.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// TableRef is a parsed, validated schema-qualified table reference.
type TableRef struct {
	Schema string
	Table  string
}

// ParseTableRef splits "schema.table" or a bare "table" and validates both
// parts. defaultSchema fills in for a bare name; pass "" for backends without
// a schema concept (MySQL resolves the active database instead).
func ParseTableRef(value, defaultSchema string) (TableRef, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return TableRef{}, apperrors.BadRequest("table name is required")
	}

	schema, table := defaultSchema, trimmed
	if parts := strings.SplitN(trimmed, ".", 2); len(parts) == 2 {
		schema = strings.TrimSpace(parts[0])
		table = strings.TrimSpace(parts[1])
	}

	if schema != "" && !identifierPattern.MatchString(schema) {
		return TableRef{}, apperrors.BadRequest("invalid table name")
	}
	if !identifierPattern.MatchString(table) {
		return TableRef{}, apperrors.BadRequest("invalid table name")
	}

	return TableRef{Schema: schema, Table: table}, nil
}

// ValidIdentifier reports whether name may be interpolated after quoting.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// QuoteIdent quotes an identifier with ANSI double quotes (PostgreSQL,
// SQLite, DuckDB).
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteIdentMySQL quotes an identifier with MySQL backticks.
func QuoteIdentMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Qualified returns the double-quoted schema.table form, or just the quoted
// table when no schema applies.
func (r TableRef) Qualified() string {
	if r.Schema == "" {
		return QuoteIdent(r.Table)
	}
	return QuoteIdent(r.Schema) + "." + QuoteIdent(r.Table)
}
