// Package config loads tinychain's YAML configuration file, the same
// format warren's `apply` command reads for resource manifests.
package config

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/MuhamedEssam/tinychain/pkg/log"
)

// Config is tinychain's top-level process configuration.
type Config struct {
	// DataDir is where canonical collection files, TxnDir trees, and
	// the transaction journal live.
	DataDir string `yaml:"data_dir"`

	// CacheMaxSize bounds pkg/cache's byte budget (spec.md §4.1).
	CacheMaxSize datasize.ByteSize `yaml:"cache_max_size"`

	// PerBlock is loaded from the config file but not read anywhere: the
	// tensor layer always uses the constant pkg/tensor.PerBlock as its
	// dense block chunk size.
	PerBlock uint64 `yaml:"per_block"`

	Log LogConfig `yaml:"log"`
}

// LogConfig mirrors pkg/log.Config in YAML-friendly form.
type LogConfig struct {
	Level      log.Level `yaml:"level"`
	JSONOutput bool      `yaml:"json"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		DataDir:      "./data",
		CacheMaxSize: 64 * datasize.MB,
		Log:          LogConfig{Level: log.InfoLevel},
	}
}

// Load reads and parses a YAML config file at path, filling in
// Default() for any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.DataDir == "" {
		return Config{}, fmt.Errorf("config %s: data_dir must not be empty", path)
	}
	if cfg.CacheMaxSize == 0 {
		return Config{}, fmt.Errorf("config %s: cache_max_size must be greater than zero", path)
	}

	return cfg, nil
}
