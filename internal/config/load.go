package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the nominal configuration: production timing constants,
// default pin assignments, diagnostic recorder disabled.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// Load reads and parses the YAML file at path. An empty path yields the
// defaults. The result is validated and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	Normalize(cfg)
	return cfg, nil
}
