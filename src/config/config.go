package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"typegate/src/internal/project"
)

// Config contains typegate server configuration
type Config struct {
	Engine    EngineConfig `yaml:"engine"`
	ScanDepth int          `yaml:"scan_depth,omitempty"`
	LogLevel  string       `yaml:"log_level,omitempty"`
}

// EngineConfig describes how the analysis engine host is launched and where
// the bundled engine installation lives.
type EngineConfig struct {
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args,omitempty"`
	BundledPath string   `yaml:"bundled_path"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateDefaultConfig generates a default configuration file
func GenerateDefaultConfig(path string) error {
	config := GetDefaultConfig()
	return SaveConfig(config, path)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Engine.Command == "" {
		return fmt.Errorf("engine command is required")
	}
	if config.Engine.BundledPath == "" {
		return fmt.Errorf("engine bundled_path is required")
	}
	if config.ScanDepth < 0 {
		return fmt.Errorf("scan_depth must not be negative")
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".typegate", "config.yaml")
}

// GetDefaultBundledPath returns where the bundled engine installation is
// expected when the config does not override it.
func GetDefaultBundledPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".typegate", "engine")
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Command:     "node",
			Args:        []string{"--max-old-space-size=4096"},
			BundledPath: GetDefaultBundledPath(),
		},
		ScanDepth: project.DefaultScanDepth,
		LogLevel:  "info",
	}
}

// LoadOrDefault loads the config at path when it exists and falls back to
// the defaults when it does not. A present but broken config is still an
// error; silently ignoring it would mask typos.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}
	return LoadConfig(path)
}
