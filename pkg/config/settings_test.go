package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/takopi-docker", dir)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/takopi-docker/config.yaml", path)
}

func TestLoad_MissingReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Version, s.Version)
	assert.NotNil(t, s.Args)
}

func TestLoad_DefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s := NewSettings()
	s.LogLevel = "debug"
	require.NoError(t, s.Save(""))

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := NewSettings()
	s.Manifest = "/etc/takopi/manifest.yaml"
	s.MetricsFile = "/var/lib/node_exporter/takopi.prom"
	s.Args["AGENT"] = "codex"
	require.NoError(t, s.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("args: [not, a, map]"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
