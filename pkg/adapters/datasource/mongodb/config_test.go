package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	t.Run("uri and database", func(t *testing.T) {
		cfg, err := FromMap(map[string]any{
			"uri":      "mongodb://localhost:27017",
			"database": "app",
		})
		require.NoError(t, err)
		assert.Equal(t, "mongodb://localhost:27017", cfg.URI)
		assert.Equal(t, "app", cfg.Database)
	})

	t.Run("missing uri", func(t *testing.T) {
		_, err := FromMap(map[string]any{"database": "app"})
		assert.Error(t, err)
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := FromMap(map[string]any{"uri": "mongodb://localhost:27017"})
		assert.Error(t, err)
	})
}
