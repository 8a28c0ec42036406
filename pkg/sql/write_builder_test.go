package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsertQuery(t *testing.T) {
	table := TableRef{Schema: "public", Table: "users"}

	t.Run("single column", func(t *testing.T) {
		query, args, err := BuildInsertQuery(table, &WriteSet{
			Columns: []string{"name"},
			Values:  []any{"alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "public"."users" ("name") VALUES ($1) RETURNING *`, query)
		assert.Equal(t, []any{"alice"}, args)
	})

	t.Run("multiple columns keep order", func(t *testing.T) {
		query, args, err := BuildInsertQuery(table, &WriteSet{
			Columns: []string{"age", "name"},
			Values:  []any{int64(30), "alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "public"."users" ("age", "name") VALUES ($1, $2) RETURNING *`, query)
		assert.Equal(t, []any{int64(30), "alice"}, args)
	})

	t.Run("empty set", func(t *testing.T) {
		_, _, err := BuildInsertQuery(table, &WriteSet{})
		require.Error(t, err)
	})

	t.Run("invalid column name", func(t *testing.T) {
		_, _, err := BuildInsertQuery(table, &WriteSet{
			Columns: []string{`na"me`},
			Values:  []any{"x"},
		})
		require.Error(t, err)
	})
}

func TestBuildUpdateQuery(t *testing.T) {
	table := TableRef{Schema: "public", Table: "users"}

	t.Run("set then where numbering is contiguous", func(t *testing.T) {
		query, args, err := BuildUpdateQuery(table,
			&WriteSet{Columns: []string{"age", "name"}, Values: []any{int64(31), "bob"}},
			&WriteSet{Columns: []string{"id"}, Values: []any{"abc"}},
		)
		require.NoError(t, err)
		assert.Equal(t,
			`UPDATE "public"."users" SET "age" = $1, "name" = $2 WHERE "id" = $3 RETURNING *`,
			query)
		assert.Equal(t, []any{int64(31), "bob", "abc"}, args)
	})

	t.Run("multiple predicates joined with AND", func(t *testing.T) {
		query, _, err := BuildUpdateQuery(table,
			&WriteSet{Columns: []string{"name"}, Values: []any{"bob"}},
			&WriteSet{Columns: []string{"id", "active"}, Values: []any{"abc", true}},
		)
		require.NoError(t, err)
		assert.Equal(t,
			`UPDATE "public"."users" SET "name" = $1 WHERE "id" = $2 AND "active" = $3 RETURNING *`,
			query)
	})

	t.Run("missing where", func(t *testing.T) {
		_, _, err := BuildUpdateQuery(table,
			&WriteSet{Columns: []string{"name"}, Values: []any{"bob"}},
			&WriteSet{},
		)
		require.Error(t, err)
	})

	t.Run("missing set", func(t *testing.T) {
		_, _, err := BuildUpdateQuery(table,
			&WriteSet{},
			&WriteSet{Columns: []string{"id"}, Values: []any{"abc"}},
		)
		require.Error(t, err)
	})
}
