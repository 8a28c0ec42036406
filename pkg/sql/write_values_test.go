package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

func intPtr(n int) *int { return &n }

func testSchema() []models.ColumnSchema {
	return []models.ColumnSchema{
		{ColumnName: "id", DataType: "uuid", IsNullable: false},
		{ColumnName: "age", DataType: "integer", IsNullable: true},
		{ColumnName: "counter", DataType: "bigint", IsNullable: true},
		{ColumnName: "price", DataType: "numeric", IsNullable: true},
		{ColumnName: "active", DataType: "boolean", IsNullable: false},
		{ColumnName: "born_on", DataType: "date", IsNullable: true},
		{ColumnName: "name", DataType: "character varying", IsNullable: false, MaxLength: intPtr(10)},
		{ColumnName: "meta", DataType: "jsonb", IsNullable: true},
		{ColumnName: "seen_at", DataType: "timestamp with time zone", IsNullable: true},
	}
}

func TestValidateWriteValues(t *testing.T) {
	schema := testSchema()

	tests := []struct {
		name        string
		values      map[string]any
		allowed     []string
		wantCols    []string
		wantVals    []any
		wantErrPart string
	}{
		{
			name:     "integer from json float",
			values:   map[string]any{"age": float64(30)},
			wantCols: []string{"age"},
			wantVals: []any{int64(30)},
		},
		{
			name:     "integer from digit string",
			values:   map[string]any{"age": "42"},
			wantCols: []string{"age"},
			wantVals: []any{int64(42)},
		},
		{
			name:        "integer rejects fraction",
			values:      map[string]any{"age": 30.5},
			wantErrPart: "age must be an integer",
		},
		{
			name:     "bigint round-trips as string",
			values:   map[string]any{"counter": "9007199254740993"},
			wantCols: []string{"counter"},
			wantVals: []any{"9007199254740993"},
		},
		{
			name:     "bigint from small number",
			values:   map[string]any{"counter": float64(12)},
			wantCols: []string{"counter"},
			wantVals: []any{"12"},
		},
		{
			name:     "numeric from string",
			values:   map[string]any{"price": "19.99"},
			wantCols: []string{"price"},
			wantVals: []any{19.99},
		},
		{
			name:        "numeric rejects words",
			values:      map[string]any{"price": "cheap"},
			wantErrPart: "price must be numeric",
		},
		{
			name:     "boolean from string",
			values:   map[string]any{"active": "TRUE"},
			wantCols: []string{"active"},
			wantVals: []any{true},
		},
		{
			name:     "boolean zero string",
			values:   map[string]any{"active": "0"},
			wantCols: []string{"active"},
			wantVals: []any{false},
		},
		{
			name:        "boolean rejects yes",
			values:      map[string]any{"active": "yes"},
			wantErrPart: "active must be boolean",
		},
		{
			name:     "date",
			values:   map[string]any{"born_on": "1990-04-01"},
			wantCols: []string{"born_on"},
			wantVals: []any{"1990-04-01"},
		},
		{
			name:        "date rejects other formats",
			values:      map[string]any{"born_on": "04/01/1990"},
			wantErrPart: "born_on must be YYYY-MM-DD",
		},
		{
			name:     "uuid",
			values:   map[string]any{"id": "0c0ccb3e-89d2-4f57-9019-3d1677c8ab6e"},
			wantCols: []string{"id"},
			wantVals: []any{"0c0ccb3e-89d2-4f57-9019-3d1677c8ab6e"},
		},
		{
			name:        "uuid rejects garbage",
			values:      map[string]any{"id": "not-a-uuid"},
			wantErrPart: "id must be a UUID",
		},
		{
			name:     "string within max length",
			values:   map[string]any{"name": "short"},
			wantCols: []string{"name"},
			wantVals: []any{"short"},
		},
		{
			name:        "string over max length",
			values:      map[string]any{"name": "a very long name indeed"},
			wantErrPart: "exceeds max length 10",
		},
		{
			name:     "max length counts runes not bytes",
			values:   map[string]any{"name": "héllo wörl"},
			wantCols: []string{"name"},
			wantVals: []any{"héllo wörl"},
		},
		{
			name:     "json passes through",
			values:   map[string]any{"meta": map[string]any{"k": "v"}},
			wantCols: []string{"meta"},
			wantVals: []any{map[string]any{"k": "v"}},
		},
		{
			name:     "timestamp string",
			values:   map[string]any{"seen_at": "2024-01-02T03:04:05Z"},
			wantCols: []string{"seen_at"},
			wantVals: []any{"2024-01-02T03:04:05Z"},
		},
		{
			name:        "timestamp rejects empty",
			values:      map[string]any{"seen_at": "  "},
			wantErrPart: "seen_at must be a date/time string",
		},
		{
			name:     "null into nullable column",
			values:   map[string]any{"age": nil},
			wantCols: []string{"age"},
			wantVals: []any{nil},
		},
		{
			name:        "null into non-nullable column",
			values:      map[string]any{"active": nil},
			wantErrPart: "active cannot be null",
		},
		{
			name:        "unknown column",
			values:      map[string]any{"ghost": 1},
			wantErrPart: "unknown column: ghost",
		},
		{
			name:        "column outside allow-list",
			values:      map[string]any{"age": float64(1)},
			allowed:     []string{"name"},
			wantErrPart: "column not writable: age",
		},
		{
			name:        "allow-list checked before schema lookup",
			values:      map[string]any{"ghost": 1},
			allowed:     []string{"name"},
			wantErrPart: "column not writable: ghost",
		},
		{
			name:        "empty values",
			values:      map[string]any{},
			wantErrPart: "no values provided",
		},
		{
			name:     "columns come out sorted",
			values:   map[string]any{"name": "x", "age": float64(1), "active": true},
			wantCols: []string{"active", "age", "name"},
			wantVals: []any{true, int64(1), "x"},
		},
		{
			name:     "column name matching is case-insensitive",
			values:   map[string]any{"AGE": float64(3)},
			wantCols: []string{"age"},
			wantVals: []any{int64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ValidateWriteValues(tt.values, schema, tt.allowed)
			if tt.wantErrPart != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
				assert.Contains(t, err.Error(), tt.wantErrPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, set.Columns)
			assert.Equal(t, tt.wantVals, set.Values)
		})
	}
}

func TestValidateWhereValues(t *testing.T) {
	schema := testSchema()

	t.Run("valid predicate", func(t *testing.T) {
		set, err := ValidateWhereValues(map[string]any{"id": "0c0ccb3e-89d2-4f57-9019-3d1677c8ab6e"}, schema)
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, set.Columns)
	})

	t.Run("null predicate rejected", func(t *testing.T) {
		_, err := ValidateWhereValues(map[string]any{"age": nil}, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "where.age cannot be null")
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := ValidateWhereValues(map[string]any{"ghost": 1}, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown where column: ghost")
	})

	t.Run("empty where", func(t *testing.T) {
		_, err := ValidateWhereValues(map[string]any{}, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "where clause is required")
	})
}
