package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONNECTION_ENCRYPTION_KEY", "test-key")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30, cfg.Datasource.QueryTimeoutSeconds)
	assert.Equal(t, "./data", cfg.DataDir)
}

func TestLoadRequiresEncryptionKey(t *testing.T) {
	t.Setenv("CONNECTION_ENCRYPTION_KEY", "")

	_, err := Load("test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONNECTION_ENCRYPTION_KEY")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONNECTION_ENCRYPTION_KEY", "test-key")
	t.Setenv("PORT", "9999")
	t.Setenv("PGHOST", "meta.internal")
	t.Setenv("DATA_DIR", "/var/lib/openbase")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "meta.internal", cfg.Database.Host)
	assert.Equal(t, "/var/lib/openbase", cfg.DataDir)
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "openbase",
		Password: "pw", Database: "openbase_engine", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=openbase password=pw dbname=openbase_engine sslmode=disable",
		db.ConnectionString(),
	)
}
