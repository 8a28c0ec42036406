package sql

import (
	dbsql "database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

func TestCompileNamedPostgres(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		params   map[string]any
		wantText string
		wantArgs []any
	}{
		{
			name:     "no parameters",
			query:    "SELECT * FROM users",
			params:   nil,
			wantText: "SELECT * FROM users",
			wantArgs: nil,
		},
		{
			name:     "single parameter",
			query:    "SELECT * FROM users WHERE id = :user_id",
			params:   map[string]any{"user_id": 42},
			wantText: "SELECT * FROM users WHERE id = $1",
			wantArgs: []any{42},
		},
		{
			name:     "two parameters in order of first appearance",
			query:    "SELECT * FROM orders WHERE total > :min AND status = :status",
			params:   map[string]any{"status": "paid", "min": 10},
			wantText: "SELECT * FROM orders WHERE total > $1 AND status = $2",
			wantArgs: []any{10, "paid"},
		},
		{
			name:     "repeated name reuses the same index",
			query:    "SELECT * FROM t WHERE a = :x OR b = :x",
			params:   map[string]any{"x": 7},
			wantText: "SELECT * FROM t WHERE a = $1 OR b = $1",
			wantArgs: []any{7},
		},
		{
			name:     "type cast is not a parameter",
			query:    "SELECT id::text FROM users WHERE id = :id",
			params:   map[string]any{"id": 1},
			wantText: "SELECT id::text FROM users WHERE id = $1",
			wantArgs: []any{1},
		},
		{
			name:     "parameter at start of text",
			query:    ":x",
			params:   map[string]any{"x": "v"},
			wantText: "$1",
			wantArgs: []any{"v"},
		},
		{
			name:     "time literal colon untouched",
			query:    "SELECT '12:30' AS t FROM shifts WHERE day = :day",
			params:   map[string]any{"day": "mon"},
			wantText: "SELECT '12:30' AS t FROM shifts WHERE day = $1",
			wantArgs: []any{"mon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := CompileNamed(tt.query, tt.params, DialectPostgres)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, compiled.Text)
			assert.Equal(t, tt.wantArgs, compiled.Args)
		})
	}
}

func TestCompileNamedMySQL(t *testing.T) {
	compiled, err := CompileNamed(
		"SELECT * FROM t WHERE a = :x OR b = :x AND c = :y",
		map[string]any{"x": 1, "y": 2},
		DialectMySQL,
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = ? OR b = ? AND c = ?", compiled.Text)
	// Positional markers cannot be reused, so :x binds twice.
	assert.Equal(t, []any{1, 1, 2}, compiled.Args)
}

func TestCompileNamedSQLite(t *testing.T) {
	compiled, err := CompileNamed(
		"SELECT * FROM t WHERE a = :x OR b = :x",
		map[string]any{"x": 5},
		DialectSQLite,
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = :x OR b = :x", compiled.Text)
	// SQLite binds by name, so a repeated name contributes one argument.
	require.Len(t, compiled.Args, 1)
	named, ok := compiled.Args[0].(dbsql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "x", named.Name)
	assert.Equal(t, 5, named.Value)
}

func TestCompileNamedDuckDB(t *testing.T) {
	compiled, err := CompileNamed(
		"SELECT * FROM t WHERE a = :a AND b = :b",
		map[string]any{"a": "x", "b": "y"},
		DialectDuckDB,
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", compiled.Text)
	assert.Equal(t, []any{"x", "y"}, compiled.Args)
}

func TestCompileNamedMissingParameter(t *testing.T) {
	_, err := CompileNamed("SELECT :present, :absent", map[string]any{"present": 1}, DialectPostgres)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
	assert.Contains(t, err.Error(), "absent")
}

func TestStripTypeCasts(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "single cast",
			query:    "SELECT id::text FROM users",
			expected: "SELECT id FROM users",
		},
		{
			name:     "multiple casts",
			query:    "SELECT a::int, b::varchar FROM t",
			expected: "SELECT a, b FROM t",
		},
		{
			name:     "no casts",
			query:    "SELECT a FROM t WHERE b = :b",
			expected: "SELECT a FROM t WHERE b = :b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTypeCasts(tt.query))
		})
	}
}
