package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/manav03panchal/studylog/internal/errors"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("expected Storage.Backend = badger, got %q", cfg.Storage.Backend)
	}
	if !strings.Contains(cfg.Storage.BadgerPath, AppName) {
		t.Errorf("expected Storage.BadgerPath under %s, got %q", AppName, cfg.Storage.BadgerPath)
	}
	if cfg.Storage.RequestTimeout != 30*time.Second {
		t.Errorf("expected Storage.RequestTimeout = 30s, got %v", cfg.Storage.RequestTimeout)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:8741" {
		t.Errorf("expected Server.ListenAddr = 127.0.0.1:8741, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected Server.ShutdownTimeout = 5s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected Log.Level = warn, got %q", cfg.Log.Level)
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if !strings.HasSuffix(path, filepath.Join(AppName, "config.yaml")) {
		t.Errorf("unexpected default config path %q", path)
	}
}

func TestConfigReset(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.Storage.Backend = BackendRemote
	cfg.Server.ListenAddr = ":1"

	cfg.Reset()

	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("expected backend reset to badger, got %q", cfg.Storage.Backend)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:8741" {
		t.Errorf("expected listen addr reset, got %q", cfg.Server.ListenAddr)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  backend: sqlite
  sqlite_path: /tmp/records.db
  request_timeout: 5s
server:
  listen_addr: ":9000"
log:
  level: debug
  json: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected backend sqlite, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLitePath != "/tmp/records.db" {
		t.Errorf("unexpected sqlite path %q", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.RequestTimeout != 5*time.Second {
		t.Errorf("expected request timeout 5s, got %v", cfg.Storage.RequestTimeout)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("unexpected listen addr %q", cfg.Server.ListenAddr)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	// Unset keys keep their defaults.
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected default shutdown timeout, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !errors.IsSystemError(err) {
		t.Errorf("expected SystemError, got %T", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.IsUserError(err) {
		t.Errorf("expected UserError for invalid YAML, got %v", err)
	}
}

func TestConfigLoadFromEnv(t *testing.T) {
	t.Setenv("STUDYLOG_BACKEND", BackendRemote)
	t.Setenv("STUDYLOG_REMOTE_URL", "http://localhost:8741")
	t.Setenv("STUDYLOG_REQUEST_TIMEOUT", "2s")
	t.Setenv("STUDYLOG_LISTEN_ADDR", ":7000")
	t.Setenv("STUDYLOG_LOG_LEVEL", "info")
	t.Setenv("STUDYLOG_LOG_JSON", "true")

	cfg := DefaultRuntimeConfig()
	cfg.ReloadFromEnv()

	if cfg.Storage.Backend != BackendRemote {
		t.Errorf("expected backend remote, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.RemoteURL != "http://localhost:8741" {
		t.Errorf("unexpected remote url %q", cfg.Storage.RemoteURL)
	}
	if cfg.Storage.RequestTimeout != 2*time.Second {
		t.Errorf("expected request timeout 2s, got %v", cfg.Storage.RequestTimeout)
	}
	if cfg.Server.ListenAddr != ":7000" {
		t.Errorf("unexpected listen addr %q", cfg.Server.ListenAddr)
	}
	if cfg.Log.Level != "info" || !cfg.Log.JSON {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestConfigLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("STUDYLOG_REQUEST_TIMEOUT", "soon")
	t.Setenv("STUDYLOG_LOG_JSON", "maybe")

	cfg := DefaultRuntimeConfig()
	cfg.ReloadFromEnv()

	if cfg.Storage.RequestTimeout != 30*time.Second {
		t.Errorf("invalid duration should keep default, got %v", cfg.Storage.RequestTimeout)
	}
	if cfg.Log.JSON {
		t.Error("invalid bool should keep default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *RuntimeConfig)
		wantErr bool
	}{
		{"default", func(c *RuntimeConfig) {}, false},
		{"badger_in_memory", func(c *RuntimeConfig) { c.Storage.BadgerPath = "" }, false},
		{"sqlite_ok", func(c *RuntimeConfig) { c.Storage.Backend = BackendSQLite }, false},
		{"sqlite_no_path", func(c *RuntimeConfig) {
			c.Storage.Backend = BackendSQLite
			c.Storage.SQLitePath = ""
		}, true},
		{"postgres_no_dsn", func(c *RuntimeConfig) { c.Storage.Backend = BackendPostgres }, true},
		{"postgres_ok", func(c *RuntimeConfig) {
			c.Storage.Backend = BackendPostgres
			c.Storage.PostgresDSN = "postgres://localhost/studylog"
		}, false},
		{"remote_no_url", func(c *RuntimeConfig) { c.Storage.Backend = BackendRemote }, true},
		{"remote_ok", func(c *RuntimeConfig) {
			c.Storage.Backend = BackendRemote
			c.Storage.RemoteURL = "http://127.0.0.1:8741"
		}, false},
		{"remote_bad_scheme", func(c *RuntimeConfig) {
			c.Storage.Backend = BackendRemote
			c.Storage.RemoteURL = "ftp://127.0.0.1"
		}, true},
		{"unknown_backend", func(c *RuntimeConfig) { c.Storage.Backend = "mongo" }, true},
		{"negative_timeout", func(c *RuntimeConfig) { c.Storage.RequestTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRuntimeConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateUnknownBackendSentinel(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.Storage.Backend = "mongo"
	if err := cfg.Validate(); !errors.Is(err, errors.ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestConfigLoadFromEnvMemory(t *testing.T) {
	t.Setenv("STUDYLOG_DATABASE", MemoryPath)

	cfg := DefaultRuntimeConfig()
	cfg.ReloadFromEnv()

	if cfg.Storage.BadgerPath != "" {
		t.Errorf("BadgerPath = %q, want empty for in-memory", cfg.Storage.BadgerPath)
	}
}
