package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanParameters(t *testing.T) {
	t.Run("clean parameters", func(t *testing.T) {
		findings := ScanParameters(map[string]any{
			"customer_id": "12345",
			"limit":       100,
			"active":      true,
		})
		assert.Empty(t, findings)
	})

	t.Run("injection payload flagged", func(t *testing.T) {
		findings := ScanParameters(map[string]any{
			"search": "' OR 1=1 --",
		})
		require.Len(t, findings, 1)
		assert.Equal(t, "search", findings[0].ParamName)
		assert.NotEmpty(t, findings[0].Fingerprint)
	})

	t.Run("non-string values skipped", func(t *testing.T) {
		findings := ScanParameters(map[string]any{
			"n": 1, "f": 2.5, "b": false, "nothing": nil,
		})
		assert.Empty(t, findings)
	})
}
