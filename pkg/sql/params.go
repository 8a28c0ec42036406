package sql

import (
	dbsql "database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

// Dialect selects the native parameter form a backend expects.
type Dialect int

const (
	// DialectPostgres compiles :name to $1, $2, … reusing the same index
	// for repeated references to one name.
	DialectPostgres Dialect = iota
	// DialectMySQL compiles :name to positional ?, pushing a value per
	// occurrence (positional markers cannot be reused).
	DialectMySQL
	// DialectSQLite leaves :name in place and binds by name.
	DialectSQLite
	// DialectDuckDB compiles like PostgreSQL ($1, $2, …).
	DialectDuckDB
)

// namedParamPattern matches :identifier tokens. The leading (^|[^:]) group
// consumes the preceding character so that PostgreSQL ::type casts never
// match; the identifier is [A-Za-z_][A-Za-z0-9_]*.
var namedParamPattern = regexp.MustCompile(`(^|[^:]):([A-Za-z_][A-Za-z0-9_]*)\b`)

// Compiled is a query rewritten into a backend's native parameter form plus
// the ordered argument list to bind. For DialectSQLite the arguments are
// database/sql Named values.
type Compiled struct {
	Text string
	Args []any
}

// CompileNamed rewrites :name placeholders in queryText into the dialect's
// native form. Every referenced name must be present in params; a missing
// name fails with a BadRequest error naming it.
func CompileNamed(queryText string, params map[string]any, dialect Dialect) (*Compiled, error) {
	var (
		b           strings.Builder
		args        []any
		indexByName = make(map[string]int)
		namedSeen   = make(map[string]bool)
		last        int
	)

	for _, m := range namedParamPattern.FindAllStringSubmatchIndex(queryText, -1) {
		// m[2]:m[3] is the prefix group, m[4]:m[5] the identifier.
		b.WriteString(queryText[last:m[2]])
		if m[2] != m[3] {
			b.WriteString(queryText[m[2]:m[3]])
		}
		name := queryText[m[4]:m[5]]

		value, ok := params[name]
		if !ok {
			return nil, apperrors.BadRequestf("missing query parameter: %s", name)
		}

		switch dialect {
		case DialectPostgres, DialectDuckDB:
			index, exists := indexByName[name]
			if !exists {
				args = append(args, value)
				index = len(args)
				indexByName[name] = index
			}
			fmt.Fprintf(&b, "$%d", index)
		case DialectMySQL:
			args = append(args, value)
			b.WriteString("?")
		case DialectSQLite:
			if !namedSeen[name] {
				namedSeen[name] = true
				args = append(args, dbsql.Named(name, value))
			}
			b.WriteString(":" + name)
		default:
			return nil, apperrors.BadRequestf("unsupported parameter dialect: %d", dialect)
		}

		last = m[1]
	}
	b.WriteString(queryText[last:])

	return &Compiled{Text: b.String(), Args: args}, nil
}

// typeCastPattern matches PostgreSQL-style ::type casts. This is a structural
// pattern, not a parser; queries authored against PostgreSQL degrade
// gracefully on backends that lack the syntax.
var typeCastPattern = regexp.MustCompile(`::[A-Za-z_][A-Za-z0-9_]*`)

// StripTypeCasts removes ::type casts before a query is wrapped for SQLite or
// DuckDB execution.
func StripTypeCasts(queryText string) string {
	return typeCastPattern.ReplaceAllString(queryText, "")
}
