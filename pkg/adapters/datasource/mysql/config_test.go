package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	t.Run("dsn wins", func(t *testing.T) {
		cfg, err := FromMap(map[string]any{"dsn": "u:p@tcp(h:3306)/db"})
		require.NoError(t, err)
		assert.Equal(t, "u:p@tcp(h:3306)/db", cfg.FormatDSN())
	})

	t.Run("individual fields", func(t *testing.T) {
		cfg, err := FromMap(map[string]any{
			"host":     "db.internal",
			"user":     "app",
			"password": "secret",
			"database": "prod",
		})
		require.NoError(t, err)
		assert.Equal(t, 3306, cfg.Port)

		dsn := cfg.FormatDSN()
		assert.Contains(t, dsn, "tcp(db.internal:3306)")
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := FromMap(map[string]any{"host": "h", "user": "u"})
		assert.Error(t, err)
		_, err = FromMap(map[string]any{})
		assert.Error(t, err)
	})
}
