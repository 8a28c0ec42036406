package sql

import (
	"fmt"
	"strings"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

// BuildInsertQuery renders a parameterized single-row INSERT with RETURNING *.
// Identifiers are validated and double-quoted; values bind as $1..$N in the
// order the WriteSet carries them.
func BuildInsertQuery(table TableRef, set *WriteSet) (string, []any, error) {
	if set == nil || len(set.Columns) == 0 {
		return "", nil, apperrors.BadRequest("no values provided")
	}

	quoted := make([]string, len(set.Columns))
	placeholders := make([]string, len(set.Columns))
	for i, column := range set.Columns {
		if !ValidIdentifier(column) {
			return "", nil, apperrors.BadRequestf("invalid column name: %s", column)
		}
		quoted[i] = QuoteIdent(column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table.Qualified(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, append([]any(nil), set.Values...), nil
}

// BuildUpdateQuery renders a parameterized UPDATE with RETURNING *. SET
// parameters come first, then WHERE parameters, so placeholder numbering is
// contiguous across both clauses.
func BuildUpdateQuery(table TableRef, set, where *WriteSet) (string, []any, error) {
	if set == nil || len(set.Columns) == 0 {
		return "", nil, apperrors.BadRequest("no values provided")
	}
	if where == nil || len(where.Columns) == 0 {
		return "", nil, apperrors.BadRequest("where clause is required")
	}

	assignments := make([]string, len(set.Columns))
	for i, column := range set.Columns {
		if !ValidIdentifier(column) {
			return "", nil, apperrors.BadRequestf("invalid column name: %s", column)
		}
		assignments[i] = fmt.Sprintf("%s = $%d", QuoteIdent(column), i+1)
	}

	predicates := make([]string, len(where.Columns))
	for i, column := range where.Columns {
		if !ValidIdentifier(column) {
			return "", nil, apperrors.BadRequestf("invalid column name: %s", column)
		}
		predicates[i] = fmt.Sprintf("%s = $%d", QuoteIdent(column), len(set.Columns)+i+1)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s RETURNING *",
		table.Qualified(),
		strings.Join(assignments, ", "),
		strings.Join(predicates, " AND "),
	)

	args := make([]any, 0, len(set.Values)+len(where.Values))
	args = append(args, set.Values...)
	args = append(args, where.Values...)
	return query, args, nil
}
