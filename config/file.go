package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the run root when no path is given.
const DefaultFileName = "sitemigrate.yaml"

// LoadConfigFile loads configuration from path. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Load returns the defaults overlaid with the file at path, if any.
func Load(path string) (*Config, error) {
	cfg := Default()

	fileCfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(fileCfg)

	return cfg, nil
}
