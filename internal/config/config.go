// Package config loads the rentroll.yaml configuration. Environment
// variables RENTROLL_DATA_DIR and RENTROLL_LOG_LEVEL override the file so
// scripted runs can redirect a processor without editing it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Env override names.
const (
	EnvDataDir  = "RENTROLL_DATA_DIR"
	EnvLogLevel = "RENTROLL_LOG_LEVEL"
)

// Config represents the top-level rentroll.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	DataDir  string         `yaml:"data_dir"`
	LogLevel string         `yaml:"log_level"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// Load reads a rentroll.yaml file from disk and applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	cfg.normalize()
	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults (plus
// environment overrides) when no file exists.
func LoadOrDefault(path, businessName string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = Default(businessName)
		cfg.applyEnv()
		cfg.normalize()
		return cfg, nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: "llc_single_member",
		},
		DataDir:  "data",
		LogLevel: "info",
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// normalize makes the data dir absolute and the log level lowercase so
// downstream code never re-resolves either.
func (c *Config) normalize() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if !filepath.IsAbs(c.DataDir) {
		if abs, err := filepath.Abs(c.DataDir); err == nil {
			c.DataDir = abs
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}
