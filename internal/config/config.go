// Package config provides centralized configuration for Studylog.
//
// Values are resolved in order: built-in defaults, the YAML config file,
// then STUDYLOG_* environment variables. Command-line flags are applied on
// top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/validate"
)

// AppName is the application name used for data and config directories.
const AppName = "studylog"

// Storage backends.
const (
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// MemoryPath as STUDYLOG_DATABASE selects an in-memory badger database.
const MemoryPath = ":memory:"

// Backends lists every supported storage backend.
var Backends = []string{BackendBadger, BackendSQLite, BackendPostgres, BackendRemote}

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and configures the record repository.
type StorageConfig struct {
	// Backend is one of badger, sqlite, postgres, remote.
	// Default: badger
	Backend string `yaml:"backend"`

	// BadgerPath is the Badger database directory.
	// Default: $XDG_DATA_HOME/studylog/db
	BadgerPath string `yaml:"badger_path"`

	// SQLitePath is the SQLite database file.
	// Default: $XDG_DATA_HOME/studylog/studylog.db
	SQLitePath string `yaml:"sqlite_path"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `yaml:"postgres_dsn"`

	// RemoteURL is the base URL of a 'studylog serve' instance.
	RemoteURL string `yaml:"remote_url"`

	// RequestTimeout bounds each HTTP request of the remote backend.
	// Zero disables the timeout.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ServerConfig configures 'studylog serve'.
type ServerConfig struct {
	// ListenAddr is the HTTP listen address.
	// Default: 127.0.0.1:8741
	ListenAddr string `yaml:"listen_addr"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Storage: StorageConfig{
			Backend:        BackendBadger,
			BadgerPath:     filepath.Join(xdg.DataHome, AppName, "db"),
			SQLitePath:     filepath.Join(xdg.DataHome, AppName, AppName+".db"),
			RequestTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8741",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the default config file path following the XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path means DefaultPath, which may be missing; an
// explicit path must exist.
func Load(path string) (*RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges the YAML file at path into c.
func (c *RuntimeConfig) loadFile(path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		return errors.NewSystemErrorWithOp("read config", fmt.Sprintf("cannot read %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.NewUserErrorWithField("config", path,
			fmt.Sprintf("invalid config file: %v", err),
			"Check the YAML syntax of the config file")
	}
	return nil
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	// Storage configuration
	if v := os.Getenv("STUDYLOG_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("STUDYLOG_DATABASE"); v != "" {
		if v == MemoryPath {
			v = ""
		}
		c.Storage.BadgerPath = v
	}
	if v := os.Getenv("STUDYLOG_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("STUDYLOG_POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("STUDYLOG_REMOTE_URL"); v != "" {
		c.Storage.RemoteURL = v
	}
	if v := os.Getenv("STUDYLOG_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Storage.RequestTimeout = d
		}
	}

	// Server configuration
	if v := os.Getenv("STUDYLOG_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("STUDYLOG_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.ShutdownTimeout = d
		}
	}

	// Log configuration
	if v := os.Getenv("STUDYLOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STUDYLOG_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.JSON = b
		}
	}
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
func (c *RuntimeConfig) Reset() {
	*c = *DefaultRuntimeConfig()
}

// Validate checks that the selected backend has what it needs.
func (c *RuntimeConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendBadger:
		// An empty path selects in-memory mode.
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.NewUserError("sqlite_path must not be empty", "Set storage.sqlite_path or STUDYLOG_SQLITE_PATH")
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.NewUserError("postgres_dsn must not be empty", "Set storage.postgres_dsn or STUDYLOG_POSTGRES_DSN")
		}
	case BackendRemote:
		if c.Storage.RemoteURL == "" {
			return errors.NewUserError("remote_url must not be empty", "Set storage.remote_url or STUDYLOG_REMOTE_URL")
		}
		if err := validate.URL(c.Storage.RemoteURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownBackend, c.Storage.Backend)
	}
	if c.Storage.RequestTimeout < 0 {
		return errors.NewUserError("request_timeout must not be negative", "Use a duration like 30s, or 0 to disable")
	}
	return nil
}
