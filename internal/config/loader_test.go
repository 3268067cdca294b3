package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
agent:
  endpoint: http://agent.internal:9000/sse
credentials:
  dir: /var/lib/roost/creds
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://agent.internal:9000/sse", cfg.Agent.Endpoint)
	assert.Equal(t, "/var/lib/roost/creds", cfg.Credentials.Dir)

	// Unset fields keep their defaults.
	assert.Equal(t, DefaultProvider, cfg.Agent.Provider)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("agent: ["), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
