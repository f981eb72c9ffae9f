package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "./config.yaml"

// Load reads configuration for the process.
//
// CONFIG_PATH names a YAML file that must exist. Without it ./config.yaml is
// read when present. Environment variables override file values and
// env-default tags fill whatever is left.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return LoadFile(path)
	}
	if _, err := os.Stat(defaultPath); err == nil {
		return LoadFile(defaultPath)
	}
	return load("env", func(cfg *Config) error { return cleanenv.ReadEnv(cfg) })
}

// LoadFile reads configuration from the YAML file at path, overlaid with
// the environment.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	}
	return load(path, func(cfg *Config) error { return cleanenv.ReadConfig(path, cfg) })
}

// Describe lists every environment variable the configuration understands.
func Describe() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}

func load(source string, read func(*Config) error) (*Config, error) {
	var cfg Config
	if err := read(&cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
