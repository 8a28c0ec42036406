package config

import (
	"path/filepath"
	"strings"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

// ResolveDataPath resolves a file-backed data source path against the
// configured data directory. Relative paths resolve under dataDir; absolute
// paths and any path that escapes dataDir after cleaning are rejected. The
// returned path is absolute.
func ResolveDataPath(dataDir, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.BadRequest("database path is required")
	}
	if filepath.IsAbs(trimmed) {
		return "", apperrors.BadRequest("database path must be relative to the data directory")
	}

	base, err := filepath.Abs(dataDir)
	if err != nil {
		return "", apperrors.BadRequestf("invalid data directory: %s", dataDir)
	}

	resolved := filepath.Clean(filepath.Join(base, trimmed))
	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", apperrors.BadRequest("database path escapes the data directory")
	}
	return resolved, nil
}
