package sql

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// Type families for value coercion, keyed by information_schema data_type.
var (
	integerTypes = map[string]bool{"integer": true, "smallint": true}
	bigintTypes  = map[string]bool{"bigint": true}
	numericTypes = map[string]bool{
		"numeric": true, "decimal": true, "real": true, "double precision": true,
	}
	characterTypes = map[string]bool{
		"text": true, "character varying": true, "character": true,
		"varchar": true, "bpchar": true, "citext": true,
	}
)

var (
	uuidValuePattern    = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	dateValuePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	integerValuePattern = regexp.MustCompile(`^-?\d+$`)
	numericValuePattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// WriteSet is the validated output of the write/where validators: column
// names in the schema's original casing paired with coerced values.
type WriteSet struct {
	Columns []string
	Values  []any
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func schemaByColumn(schema []models.ColumnSchema) map[string]models.ColumnSchema {
	byName := make(map[string]models.ColumnSchema, len(schema))
	for _, column := range schema {
		byName[normalizeColumnName(column.ColumnName)] = column
	}
	return byName
}

// sortedKeys gives the validators a deterministic column order; callers see
// stable statements and audit payloads regardless of map iteration order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ValidateWriteValues type-checks and coerces the SET/VALUES side of a write
// against the live schema and the allow-listed column set. allowedColumns nil
// means every schema column is writable; a non-nil set is the authoritative
// ceiling regardless of what the schema exposes.
func ValidateWriteValues(values map[string]any, schema []models.ColumnSchema, allowedColumns []string) (*WriteSet, error) {
	if values == nil {
		return nil, apperrors.BadRequest("values must be an object")
	}

	var allowedSet map[string]bool
	if allowedColumns != nil {
		allowedSet = make(map[string]bool, len(allowedColumns))
		for _, name := range allowedColumns {
			allowedSet[normalizeColumnName(name)] = true
		}
	}

	byName := schemaByColumn(schema)
	set := &WriteSet{}

	for _, rawName := range sortedKeys(values) {
		normalized := normalizeColumnName(rawName)

		if allowedSet != nil && !allowedSet[normalized] {
			return nil, apperrors.BadRequestf("column not writable: %s", rawName)
		}

		column, ok := byName[normalized]
		if !ok {
			return nil, apperrors.BadRequestf("unknown column: %s", rawName)
		}

		coerced, err := coerceValueForColumn(values[rawName], column)
		if err != nil {
			return nil, err
		}
		set.Columns = append(set.Columns, column.ColumnName)
		set.Values = append(set.Values, coerced)
	}

	if len(set.Columns) == 0 {
		return nil, apperrors.BadRequest("no values provided")
	}
	return set, nil
}

// ValidateWhereValues validates the WHERE side of an update. Null predicate
// values are rejected (an equality filter on null is a caller mistake) and at
// least one predicate column is required.
func ValidateWhereValues(where map[string]any, schema []models.ColumnSchema) (*WriteSet, error) {
	if where == nil {
		return nil, apperrors.BadRequest("where must be an object")
	}

	byName := schemaByColumn(schema)
	set := &WriteSet{}

	for _, rawName := range sortedKeys(where) {
		column, ok := byName[normalizeColumnName(rawName)]
		if !ok {
			return nil, apperrors.BadRequestf("unknown where column: %s", rawName)
		}

		coerced, err := coerceValueForColumn(where[rawName], column)
		if err != nil {
			return nil, err
		}
		if coerced == nil {
			return nil, apperrors.BadRequestf("where.%s cannot be null", column.ColumnName)
		}
		set.Columns = append(set.Columns, column.ColumnName)
		set.Values = append(set.Values, coerced)
	}

	if len(set.Columns) == 0 {
		return nil, apperrors.BadRequest("where clause is required")
	}
	return set, nil
}

// coerceValueForColumn coerces one value by the column's declared type
// family. Values typically arrive from JSON decoding, so numbers show up as
// float64 and object/array values as map[string]any / []any.
func coerceValueForColumn(value any, column models.ColumnSchema) (any, error) {
	name := column.ColumnName

	if value == nil {
		if !column.IsNullable {
			return nil, apperrors.BadRequestf("%s cannot be null", name)
		}
		return nil, nil
	}

	dataType := column.DataType

	switch {
	case integerTypes[dataType]:
		n, ok := asInt64(value)
		if !ok {
			return nil, apperrors.BadRequestf("%s must be an integer", name)
		}
		return n, nil

	case bigintTypes[dataType]:
		// Round-tripped as a string to avoid precision loss past 2^53
		// when the value later crosses a JSON boundary.
		n, ok := asInt64(value)
		if ok {
			return strconv.FormatInt(n, 10), nil
		}
		if s, isString := value.(string); isString {
			trimmed := strings.TrimSpace(s)
			if integerValuePattern.MatchString(trimmed) {
				return trimmed, nil
			}
		}
		return nil, apperrors.BadRequestf("%s must be an integer", name)

	case numericTypes[dataType]:
		switch v := value.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, apperrors.BadRequestf("%s must be numeric", name)
			}
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			trimmed := strings.TrimSpace(v)
			if numericValuePattern.MatchString(trimmed) {
				parsed, err := strconv.ParseFloat(trimmed, 64)
				if err == nil {
					return parsed, nil
				}
			}
		}
		return nil, apperrors.BadRequestf("%s must be numeric", name)

	case dataType == "boolean":
		return coerceBool(value, name)

	case dataType == "date":
		s, ok := value.(string)
		if !ok || !dateValuePattern.MatchString(strings.TrimSpace(s)) {
			return nil, apperrors.BadRequestf("%s must be YYYY-MM-DD", name)
		}
		return strings.TrimSpace(s), nil

	case dataType == "uuid":
		s, ok := value.(string)
		if !ok || !uuidValuePattern.MatchString(strings.TrimSpace(s)) {
			return nil, apperrors.BadRequestf("%s must be a UUID", name)
		}
		return strings.TrimSpace(s), nil

	case characterTypes[dataType]:
		s, ok := value.(string)
		if !ok {
			return nil, apperrors.BadRequestf("%s must be a string", name)
		}
		if column.MaxLength != nil && utf8.RuneCountInString(s) > *column.MaxLength {
			return nil, apperrors.BadRequestf("%s exceeds max length %d", name, *column.MaxLength)
		}
		return s, nil

	case dataType == "json" || dataType == "jsonb":
		// Structural validation is the database's job.
		return value, nil

	case strings.HasPrefix(dataType, "timestamp") || strings.HasPrefix(dataType, "time"):
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, apperrors.BadRequestf("%s must be a date/time string", name)
		}
		return strings.TrimSpace(s), nil
	}

	return value, nil
}

func coerceBool(value any, columnName string) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return nil, apperrors.BadRequestf("%s must be boolean", columnName)
}

// asInt64 accepts integer-valued numbers and digit-only strings.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if !integerValuePattern.MatchString(trimmed) {
			return 0, false
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
