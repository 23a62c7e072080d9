// Package config provides configuration structures and loading for dewpoint.
//
// The configuration file is entirely optional: without one, dewpoint is a
// plain calculator that infers its unit from the measurement locale. A config
// file enables computation history, the API server, and export.
package config

// Config is the main configuration structure for dewpoint.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	History   HistoryConfig   `yaml:"history"`
	Storage   StorageConfig   `yaml:"storage"`
	Webserver WebserverConfig `yaml:"webserver"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Export    ExportConfig    `yaml:"export"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	// LogLevel sets the logging verbosity: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
	// DefaultUnit overrides the locale-inferred temperature scale:
	// "auto" (infer from locale), "celsius", or "fahrenheit"
	DefaultUnit string `yaml:"default_unit"`
}

// HistoryConfig controls recording of computations.
type HistoryConfig struct {
	// Enabled controls whether successful computations are saved
	Enabled bool `yaml:"enabled"`
	// RetentionDays is how long records are kept before the scheduler
	// prunes them (0 = keep forever)
	RetentionDays int `yaml:"retention_days"`
}

// StorageConfig defines the storage backend settings.
type StorageConfig struct {
	// Type is the storage backend: sqlite or postgres
	Type     string         `yaml:"type"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database
	Path string `yaml:"path"`
}

// PostgresConfig contains PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// WebserverConfig defines the API server settings.
type WebserverConfig struct {
	// Enabled controls whether `dewpoint serve` is allowed to start
	Enabled bool `yaml:"enabled"`
	// Listen is the address and port to bind to (e.g., "127.0.0.1:8080")
	Listen string `yaml:"listen"`
	// Auth contains optional Basic Auth settings
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig contains optional Basic Auth settings for the API.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SchedulerConfig defines the automatic history retention pruning.
type SchedulerConfig struct {
	// Enabled controls whether the prune job runs in serve mode
	Enabled bool `yaml:"enabled"`
	// Schedule is a cron expression (e.g., "0 3 * * *" for 3am daily)
	Schedule string `yaml:"schedule"`
}

// ExportConfig groups optional export targets.
type ExportConfig struct {
	InfluxDB InfluxConfig `yaml:"influxdb"`
}

// InfluxConfig configures the optional InfluxDB 3 export of computations.
type InfluxConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Token    string `yaml:"token"`
	Database string `yaml:"database"`
}
