// Package config holds the recognized database options and their YAML
// persistence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDir is the storage directory used when neither the caller nor the
// configuration names one.
const DefaultDir = "db/moo"

// Config is the immutable set of recognized database options.
type Config struct {
	// DBDir is the directory under which table files live.
	DBDir string `yaml:"db_dir"`
	// DebugMode enables the debug sink.
	DebugMode bool `yaml:"debug_mode"`
	// DebugLevel is the minimum level emitted: info, warning or error.
	DebugLevel string `yaml:"debug_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DBDir:      DefaultDir,
		DebugMode:  false,
		DebugLevel: "info",
	}
}

// LoadConfig loads configuration from the specified path. Options missing
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with restrictive
// permissions, creating the parent directory if needed.
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigExists checks if a configuration file exists.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
