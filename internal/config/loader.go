package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates that no configuration file exists. Callers that can
// run without one (the calculator itself) treat this as "use defaults".
var ErrNotFound = errors.New("no config file found")

// DefaultConfigPaths defines the search order for configuration files.
var DefaultConfigPaths = []string{
	"/etc/dewpoint/config.yaml",
	"/etc/dewpoint/config.yml",
	"./dewpoint.yaml",
	"./dewpoint.yml",
}

// Load reads and parses a configuration file from the given path.
// If path is empty, it searches DEWPOINT_CONFIG and DefaultConfigPaths; if
// nothing is found it returns ErrNotFound. An explicitly named file that is
// missing or invalid is always an error.
func Load(path string) (*Config, error) {
	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unmarshal over a default-filled config so absent keys keep their
	// defaults while explicit zero values (retention_days: 0) survive.
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolveConfigPath determines which config file to use.
// Priority: explicit path > DEWPOINT_CONFIG env > default paths
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	if envPath := os.Getenv("DEWPOINT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file from DEWPOINT_CONFIG not found: %s", envPath)
		}
		return envPath, nil
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrNotFound
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.General.LogLevel] {
		return fmt.Errorf("invalid log_level: %q (must be debug, info, warn, or error)", cfg.General.LogLevel)
	}

	validUnits := map[string]bool{
		"auto":       true,
		"celsius":    true,
		"fahrenheit": true,
	}
	if !validUnits[cfg.General.DefaultUnit] {
		return fmt.Errorf("invalid default_unit: %q (must be auto, celsius, or fahrenheit)", cfg.General.DefaultUnit)
	}

	if cfg.History.RetentionDays < 0 {
		return fmt.Errorf("invalid history retention_days: %d (must not be negative)", cfg.History.RetentionDays)
	}

	validStorageTypes := map[string]bool{
		"sqlite":   true,
		"postgres": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("invalid storage type: %q (must be sqlite or postgres)", cfg.Storage.Type)
	}

	if cfg.Storage.Type == "sqlite" && cfg.Storage.SQLite.Path == "" {
		return fmt.Errorf("sqlite path is required when storage type is sqlite")
	}

	if cfg.Storage.Type == "postgres" {
		if cfg.Storage.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required when storage type is postgres")
		}
		if cfg.Storage.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required when storage type is postgres")
		}
	}

	if cfg.Webserver.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Webserver.Listen); err != nil {
			return fmt.Errorf("invalid webserver listen address %q: %w", cfg.Webserver.Listen, err)
		}
	}

	if cfg.Export.InfluxDB.Enabled {
		if cfg.Export.InfluxDB.Host == "" {
			return fmt.Errorf("influxdb host is required when influxdb export is enabled")
		}
		if cfg.Export.InfluxDB.Database == "" {
			return fmt.Errorf("influxdb database is required when influxdb export is enabled")
		}
	}

	return nil
}
