package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderDeepSeek, cfg.Provider)
	assert.Equal(t, "deepseek-chat", cfg.Model.Name)
	assert.Equal(t, StoreFile, cfg.Store.Backend)
	assert.Equal(t, 30, cfg.Scheduler.ExtractInterval)
	assert.Equal(t, 10, cfg.Scheduler.DueInterval)
	assert.Equal(t, 60, cfg.Extraction.Timeout)
	assert.True(t, cfg.Notify.Console)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
provider: ollama
store:
  backend: sqlite
  path: /tmp/reminders.db
scheduler:
  extract_interval: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/reminders.db", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Scheduler.ExtractInterval)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Scheduler.DueInterval)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Provider = ProviderOllama
		return cfg
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Provider = "claude"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Provider = ProviderDeepSeek
	cfg.DeepSeek.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Store.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Scheduler.DueInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Extraction.Timeout = -1
	assert.Error(t, cfg.Validate())
}
