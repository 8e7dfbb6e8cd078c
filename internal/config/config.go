package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/storage/postgres"
)

// EnvPrefix prefixes environment overrides: storage.backend -> TASKDECK_STORAGE_BACKEND
const EnvPrefix = "TASKDECK"

// FileName is the config file looked up in the data directory
const FileName = "config.yaml"

// Config is the application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Upcoming UpcomingConfig `mapstructure:"upcoming"`
}

// StorageConfig selects and locates the key-value store
type StorageConfig struct {
	// Backend is one of sqlite, postgres, file, memory
	// Default: "sqlite"
	Backend string `mapstructure:"backend"`

	// Path is the SQLite database or JSON file. Empty means discover
	// .taskdeck/*.db (sqlite) or use .taskdeck/store.json (file).
	Path string `mapstructure:"path"`

	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds connection settings for the postgres backend
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	// Level is trace, debug, info, warn or error
	// Default: "warn"
	Level string `mapstructure:"level"`

	// Format is "console" or "json"
	// Default: "console"
	Format string `mapstructure:"format"`
}

// UpcomingConfig controls maintenance of the "Upcoming" bucket
type UpcomingConfig struct {
	// Mode is "recompute" (a task edited into the past leaves Upcoming) or
	// "legacy" (Upcoming only grows on create and update)
	// Default: "recompute"
	Mode string `mapstructure:"mode"`
}

// Default returns the default configuration
func Default() *Config {
	pg := postgres.DefaultConfig()
	return &Config{
		Storage: StorageConfig{
			Backend: storage.BackendSQLite,
			Postgres: PostgresConfig{
				Host:     pg.Host,
				Port:     pg.Port,
				Database: pg.Database,
				User:     pg.User,
				SSLMode:  pg.SSLMode,
				MaxConns: pg.MaxConns,
			},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Upcoming: UpcomingConfig{
			Mode: "recompute",
		},
	}
}

// Validate checks if the configuration has valid values
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendSQLite, storage.BackendPostgres, storage.BackendFile, storage.BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be sqlite, postgres, file or memory (got %q)", c.Storage.Backend)
	}

	if c.Storage.Backend == storage.BackendPostgres {
		if c.Storage.Postgres.Host == "" {
			return errors.New("storage.postgres.host is required for the postgres backend")
		}
		if c.Storage.Postgres.Port < 1 || c.Storage.Postgres.Port > 65535 {
			return fmt.Errorf("storage.postgres.port must be between 1 and 65535 (got %d)", c.Storage.Postgres.Port)
		}
		if c.Storage.Postgres.MaxConns < 1 {
			return fmt.Errorf("storage.postgres.max_conns must be at least 1 (got %d)", c.Storage.Postgres.MaxConns)
		}
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		return fmt.Errorf("log.level must be trace, debug, info, warn or error (got %q)", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json' (got %q)", c.Log.Format)
	}

	if c.Upcoming.Mode != "recompute" && c.Upcoming.Mode != "legacy" {
		return fmt.Errorf("upcoming.mode must be 'recompute' or 'legacy' (got %q)", c.Upcoming.Mode)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Backend: %s, Path: %q, LogLevel: %s, LogFormat: %s, UpcomingMode: %s}",
		c.Storage.Backend, c.Storage.Path, c.Log.Level, c.Log.Format, c.Upcoming.Mode)
}

// StoreConfig converts the storage section into a store factory config
func (c *Config) StoreConfig() *storage.Config {
	pg := postgres.DefaultConfig()
	pg.Host = c.Storage.Postgres.Host
	pg.Port = c.Storage.Postgres.Port
	pg.Database = c.Storage.Postgres.Database
	pg.User = c.Storage.Postgres.User
	pg.Password = c.Storage.Postgres.Password
	pg.SSLMode = c.Storage.Postgres.SSLMode
	pg.MaxConns = c.Storage.Postgres.MaxConns
	if pg.MinConns > pg.MaxConns {
		pg.MinConns = pg.MaxConns
	}

	return &storage.Config{
		Backend:  c.Storage.Backend,
		Path:     c.Storage.Path,
		Postgres: pg,
	}
}

// ProjectConfigPath returns the path of the config file in the current project
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, storage.DataDir, FileName)
}

// Load reads configuration from path, or from the project config file when
// path is empty and that file exists. TASKDECK_* environment variables
// override file values. A missing project file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if p := ProjectConfigPath(); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Upcoming.Mode = strings.ToLower(cfg.Upcoming.Mode)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.postgres.host", d.Storage.Postgres.Host)
	v.SetDefault("storage.postgres.port", d.Storage.Postgres.Port)
	v.SetDefault("storage.postgres.database", d.Storage.Postgres.Database)
	v.SetDefault("storage.postgres.user", d.Storage.Postgres.User)
	v.SetDefault("storage.postgres.password", d.Storage.Postgres.Password)
	v.SetDefault("storage.postgres.sslmode", d.Storage.Postgres.SSLMode)
	v.SetDefault("storage.postgres.max_conns", d.Storage.Postgres.MaxConns)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("upcoming.mode", d.Upcoming.Mode)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
