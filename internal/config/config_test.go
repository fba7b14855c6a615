package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider)
	assert.Equal(t, 60, c.HTTPTimeoutSec)
	assert.Equal(t, 100000, c.MaxRows)
	assert.Equal(t, "127.0.0.1:8000", c.ServerAddr)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".dataloom", "workspace"), c.WorkspaceDir)
}

func TestSaveLoadAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	c := &Global{}
	require.NoError(t, c.Set("provider", "Anthropic"))
	require.NoError(t, c.Set("model", "claude-3-5-haiku-latest"))
	require.NoError(t, c.Set("max_rows", "500"))
	require.NoError(t, c.Set("temperature", "0.1"))
	require.NoError(t, c.Set("cors_origins", "http://a, http://b,"))
	require.NoError(t, c.Set("workspace_dir", "~/data"))
	require.NoError(t, Save(c, path))

	t.Setenv("DATALOOM_MODEL", "claude-3-7-sonnet-latest")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", got.Provider)
	assert.Equal(t, "claude-3-7-sonnet-latest", got.Model)
	assert.Equal(t, 500, got.MaxRows)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.Equal(t, []string{"http://a", "http://b"}, got.CORSOrigins)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), "data"), got.WorkspaceDir)
}

func TestSetRejects(t *testing.T) {
	c := &Global{}
	require.Error(t, c.Set("max_rows", "many"))
	require.Error(t, c.Set("temperature", "warm"))
	err := c.Set("nope", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
