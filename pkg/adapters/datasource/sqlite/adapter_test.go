package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

func newSeededAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	adapter, err := NewMemoryAdapter(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	_, err = adapter.DB().ExecContext(ctx, `
		CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, city TEXT);
		INSERT INTO customers (id, name, city) VALUES
			(1, 'alice', 'berlin'),
			(2, 'bob', 'paris'),
			(3, 'carol', 'berlin');
		CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER);
	`)
	require.NoError(t, err)
	return adapter
}

func TestAdapterMissingFile(t *testing.T) {
	_, err := NewAdapter(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListTables(t *testing.T) {
	adapter := newSeededAdapter(t)

	tables, err := adapter.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)
}

func TestGetRows(t *testing.T) {
	adapter := newSeededAdapter(t)
	ctx := context.Background()

	t.Run("reads bounded rows", func(t *testing.T) {
		result, err := adapter.GetRows(ctx, "customers", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, result.RowCount)
		assert.Equal(t, []string{"id", "name", "city"}, result.Columns)
	})

	t.Run("missing table is not found", func(t *testing.T) {
		_, err := adapter.GetRows(ctx, "ghosts", 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("schema-qualified name rejected", func(t *testing.T) {
		_, err := adapter.GetRows(ctx, "main.customers", 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
	})
}

func TestRunQuery(t *testing.T) {
	adapter := newSeededAdapter(t)
	ctx := context.Background()

	t.Run("named parameters bind", func(t *testing.T) {
		result, err := adapter.RunQuery(ctx,
			"SELECT name FROM customers WHERE city = :city ORDER BY name",
			map[string]any{"city": "berlin"}, 100)
		require.NoError(t, err)
		assert.Equal(t, 2, result.RowCount)
		assert.Equal(t, "alice", result.Rows[0]["name"])
		assert.Equal(t, "carol", result.Rows[1]["name"])
	})

	t.Run("repeated parameter binds once by name", func(t *testing.T) {
		result, err := adapter.RunQuery(ctx,
			"SELECT name FROM customers WHERE id = :n OR id = :n + 1 ORDER BY id",
			map[string]any{"n": 1}, 100)
		require.NoError(t, err)
		assert.Equal(t, 2, result.RowCount)
	})

	t.Run("limit bounds the result", func(t *testing.T) {
		result, err := adapter.RunQuery(ctx, "SELECT * FROM customers", nil, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
	})

	t.Run("type casts stripped", func(t *testing.T) {
		result, err := adapter.RunQuery(ctx,
			"SELECT id::bigint AS id FROM customers WHERE name = :name",
			map[string]any{"name": "alice"}, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
	})

	t.Run("missing parameter rejected", func(t *testing.T) {
		_, err := adapter.RunQuery(ctx,
			"SELECT * FROM customers WHERE city = :city", nil, 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
	})

	t.Run("second statement fails inside the wrap", func(t *testing.T) {
		_, err := adapter.RunQuery(ctx,
			"SELECT * FROM customers; SELECT * FROM orders", nil, 10)
		require.Error(t, err)
	})
}

func TestTestConnection(t *testing.T) {
	adapter := newSeededAdapter(t)

	result, err := adapter.TestConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Contains(t, result.Tables, "customers")
}

func TestLimitParamNameAvoidsCollision(t *testing.T) {
	name := limitParamName(map[string]any{
		"openbase_limit":  1,
		"openbase_limit_": 2,
	})
	assert.Equal(t, "openbase_limit__", name)
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{"filepath": "reports/app.db"})
	require.NoError(t, err)
	assert.Equal(t, "reports/app.db", cfg.Path)

	_, err = FromMap(map[string]any{})
	assert.Error(t, err)
}
