// Package config loads and defaults cadigraph's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cadigraph/cadigraph/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds all cadigraph configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Atomizer    AtomizerConfig    `yaml:"atomizer"`
	GraphStore  GraphStoreConfig  `yaml:"graph_store"`
	Rehydration RehydrationConfig `yaml:"rehydration"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "cadigraph",
		Version: "0.1.0",

		Atomizer:    DefaultAtomizerConfig(),
		GraphStore:  DefaultGraphStoreConfig(),
		Rehydration: DefaultRehydrationConfig(),
		Ingest:      DefaultIngestConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults for
// any field the file omits and for the file not existing at all.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: name=%s version=%s", cfg.Name, cfg.Version)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dbPath := os.Getenv("CADIGRAPH_DB_PATH"); dbPath != "" {
		c.GraphStore.DatabasePath = dbPath
	}
	if v := os.Getenv("CADIGRAPH_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}
