package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinychain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FillsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, "data_dir: /var/lib/tinychain\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tinychain", cfg.DataDir)
	assert.Equal(t, 64*datasize.MB, cfg.CacheMaxSize)
}

func TestLoad_ParsesHumanByteSizes(t *testing.T) {
	path := writeConfig(t, "data_dir: ./data\ncache_max_size: 256MB\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 256*datasize.MB, cfg.CacheMaxSize)
}

func TestLoad_RejectsEmptyDataDir(t *testing.T) {
	path := writeConfig(t, "data_dir: \"\"\n")

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
