// Package config loads and validates server configuration from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the API server configuration.
type Config struct {
	Addr           string   `yaml:"addr" validate:"required"`
	DBPath         string   `yaml:"dbPath" validate:"required"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" validate:"dive,url|eq=*"`
	LogLevel       string   `yaml:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// CatalogPath points at a JSON absence-type catalog; empty selects the
	// built-in presets.
	CatalogPath string `yaml:"catalogPath,omitempty"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		DBPath:         "schedule.db",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		LogLevel:       "info",
	}
}

// Load reads and validates the configuration at path. Missing optional
// fields fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs struct validation.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
