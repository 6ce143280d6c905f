package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "cadigraph", cfg.Name)
	assert.Equal(t, 8, cfg.GraphStore.DefaultQueryMaxDepth)
	assert.Equal(t, "source", cfg.Rehydration.DefaultFormat)
	assert.True(t, cfg.Rehydration.DefaultSortByType)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().GraphStore.DatabasePath, cfg.GraphStore.DatabasePath)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "name: myproject\ngraph_store:\n  database_path: custom.db\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myproject", cfg.Name)
	assert.Equal(t, "custom.db", cfg.GraphStore.DatabasePath)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, DefaultConfig().Rehydration.DefaultMaxTokens, cfg.Rehydration.DefaultMaxTokens)
}

func TestSaveRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "roundtrip"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loaded.Name)
}

func TestEnvOverrideDBPath(t *testing.T) {
	t.Setenv("CADIGRAPH_DB_PATH", "/tmp/env-override.db")
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	assert.Equal(t, "/tmp/env-override.db", cfg.GraphStore.DatabasePath)
}
