package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
session:
  secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.Address)
	assert.Equal(t, "https://test-fe.mysellerpintar.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.API.Retries)
	assert.Equal(t, time.Second, cfg.API.RetryDelay)
	assert.Equal(t, StoreSQLite, cfg.Session.Store)
	assert.Equal(t, time.Second, cfg.Session.GateDelay)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestLoad_EnvOverridesBaseURL(t *testing.T) {
	t.Setenv("API_URL", "http://backend.internal/api")

	path := writeConfig(t, `
api:
  base_url: https://from-file.example/api
session:
  secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal/api", cfg.API.BaseURL)
}

func TestLoad_UnknownStore(t *testing.T) {
	path := writeConfig(t, `
session:
  secret: s3cret
  store: memcached
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
