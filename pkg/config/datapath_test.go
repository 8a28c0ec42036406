package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataPath(t *testing.T) {
	dataDir := t.TempDir()

	t.Run("relative path resolves under data dir", func(t *testing.T) {
		resolved, err := ResolveDataPath(dataDir, "reports/app.db")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dataDir, "reports", "app.db"), resolved)
	})

	t.Run("dot segments that stay inside are cleaned", func(t *testing.T) {
		resolved, err := ResolveDataPath(dataDir, "reports/../app.db")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dataDir, "app.db"), resolved)
	})

	t.Run("absolute path rejected", func(t *testing.T) {
		_, err := ResolveDataPath(dataDir, "/etc/passwd")
		assert.Error(t, err)
	})

	t.Run("escape via dot segments rejected", func(t *testing.T) {
		_, err := ResolveDataPath(dataDir, "../outside.db")
		assert.Error(t, err)
	})

	t.Run("deep escape rejected", func(t *testing.T) {
		_, err := ResolveDataPath(dataDir, "a/../../outside.db")
		assert.Error(t, err)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := ResolveDataPath(dataDir, "  ")
		assert.Error(t, err)
	})
}
