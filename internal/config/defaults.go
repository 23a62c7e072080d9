package config

// Default values for configuration
const (
	DefaultLogLevel      = "info"
	DefaultUnit          = "auto"
	DefaultRetentionDays = 365
	DefaultStorageType   = "sqlite"
	DefaultSQLitePath    = "/var/lib/dewpoint/history.db"
	DefaultListen        = "127.0.0.1:8080"
	DefaultSchedule      = "0 3 * * *" // Daily at 3am
	DefaultPostgresPort  = 5432
	DefaultPostgresSSL   = "disable"
)

// NewDefault creates a new Config with all default values applied.
// The defaults describe the bare calculator: history, webserver, scheduler,
// and export are all off until a config file turns them on.
func NewDefault() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:    DefaultLogLevel,
			DefaultUnit: DefaultUnit,
		},
		History: HistoryConfig{
			Enabled:       false,
			RetentionDays: DefaultRetentionDays,
		},
		Storage: StorageConfig{
			Type: DefaultStorageType,
			SQLite: SQLiteConfig{
				Path: DefaultSQLitePath,
			},
			Postgres: PostgresConfig{
				Port:    DefaultPostgresPort,
				SSLMode: DefaultPostgresSSL,
			},
		},
		Webserver: WebserverConfig{
			Enabled: false,
			Listen:  DefaultListen,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: DefaultSchedule,
		},
	}
}

// ApplyDefaults fills in default values for configuration options whose zero
// value has no meaning of its own. Fields where zero is a valid setting
// (history retention) are only seeded by NewDefault.
func ApplyDefaults(cfg *Config) {
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = DefaultLogLevel
	}
	if cfg.General.DefaultUnit == "" {
		cfg.General.DefaultUnit = DefaultUnit
	}

	// History.RetentionDays is deliberately left alone: zero means keep
	// forever, so only NewDefault seeds the 365-day default.

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = DefaultStorageType
	}
	if cfg.Storage.Type == "sqlite" && cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.Postgres.Port == 0 {
		cfg.Storage.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Storage.Postgres.SSLMode == "" {
		cfg.Storage.Postgres.SSLMode = DefaultPostgresSSL
	}

	if cfg.Webserver.Listen == "" {
		cfg.Webserver.Listen = DefaultListen
	}

	if cfg.Scheduler.Schedule == "" {
		cfg.Scheduler.Schedule = DefaultSchedule
	}
}
