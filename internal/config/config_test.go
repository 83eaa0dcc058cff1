package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "openrouter", cfg.AI.DefaultAPIType)
	assert.Equal(t, []string{"gemini", "mistral", "glm", "xai"}, cfg.AI.FallbackOrder)
	assert.Equal(t, 30*time.Second, cfg.AI.AttemptTimeout)
	assert.Equal(t, 24*time.Hour, cfg.AI.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.AI.SweepInterval)
	assert.False(t, cfg.Redis.Enabled)

	// the built-in roster is used when no providers are configured
	require.Len(t, cfg.Providers, 5)
	assert.Equal(t, "openrouter", cfg.Providers[0].Type)
	assert.NotEmpty(t, cfg.Providers[0].FallbackModels)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	configYAML := `
server:
  port: "9999"
  env: production
ai:
  default_api_type: glm
  attempt_timeout: 5s
providers:
  - type: glm
    name: GLM Test
    api_key: direct-key
    model: glm-4-flash
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "glm", cfg.AI.DefaultAPIType)
	assert.Equal(t, 5*time.Second, cfg.AI.AttemptTimeout)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "direct-key", cfg.Providers[0].APIKey)
	assert.True(t, cfg.Providers[0].Configured())
}

func TestLoadConfigResolvesEnvKeys(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	configYAML := `
providers:
  - type: gemini
    name: Gemini
    api_key: "ENV:TEST_GEMINI_KEY"
  - type: xai
    name: xAI
    api_key: "ENV:TEST_UNSET_KEY"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644))
	t.Setenv("TEST_GEMINI_KEY", "resolved-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "resolved-secret", cfg.Providers[0].APIKey)
	assert.True(t, cfg.Providers[0].Configured())

	// unset variables leave the provider unconfigured, not broken
	assert.Empty(t, cfg.Providers[1].APIKey)
	assert.False(t, cfg.Providers[1].Configured())
}

func TestConfiguredTrimsWhitespace(t *testing.T) {
	assert.False(t, ProviderConfig{APIKey: "   "}.Configured())
	assert.True(t, ProviderConfig{APIKey: "k"}.Configured())
}
