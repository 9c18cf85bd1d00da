package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfig(t *testing.T) {
	t.Run("Should merge env file over base and substitute secrets", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", `
store:
  base_url: http://localhost:3000
  timeout: 10s
jwt:
  secret: ${JWT_SECRET}
`)
		writeFile(t, dir, "production.yaml", `
store:
  base_url: https://tasks.example.com
`)
		writeFile(t, dir, "secrets.env", "# comment\nJWT_SECRET=\"s3cret\"\n")

		merged, err := LoadConfig("production", dir)
		require.NoError(t, err)

		var out struct {
			Store StoreConfig `yaml:"store"`
			JWT   JWTConfig   `yaml:"jwt"`
		}
		require.NoError(t, Decode(merged, &out))
		assert.Equal(t, "https://tasks.example.com", out.Store.BaseURL)
		assert.Equal(t, 10*time.Second, out.Store.Timeout)
		assert.Equal(t, "s3cret", out.JWT.Secret)
	})

	t.Run("Should fail without base.yaml", func(t *testing.T) {
		_, err := LoadConfig("local", t.TempDir())
		require.Error(t, err)
	})

	t.Run("Should ignore a missing env file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "server:\n  port: \":8080\"\n")
		merged, err := LoadConfig("staging", dir)
		require.NoError(t, err)
		var out struct {
			Server ServerConfig `yaml:"server"`
		}
		require.NoError(t, Decode(merged, &out))
		assert.Equal(t, ":8080", out.Server.Port)
	})
}

func TestOverrideStoreFromEnv(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "http://store:3000")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("STORE_RETRY_COUNT", "not-a-number")

	cfg := StoreConfig{BaseURL: "http://localhost:3000", RetryCount: 2}
	OverrideStoreFromEnv(&cfg)

	assert.Equal(t, "http://store:3000", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.RetryCount)
}
