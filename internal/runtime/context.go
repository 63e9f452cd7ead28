// Package runtime assembles the application context for Studylog commands.
package runtime

import (
	"context"
	"os"

	"github.com/manav03panchal/studylog/internal/app"
	"github.com/manav03panchal/studylog/internal/config"
	"github.com/manav03panchal/studylog/internal/logging"
	"github.com/manav03panchal/studylog/internal/metrics"
	"github.com/manav03panchal/studylog/internal/output"
	"github.com/manav03panchal/studylog/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.RuntimeConfig
	Formatter *output.Formatter
	Metrics   *metrics.Metrics

	// Repo is the configured backend wrapped with metrics.
	Repo    storage.Repository
	Session *app.Session

	// Debug mode
	Debug bool
}

// Options configures the runtime context. Non-empty fields override the
// config file and environment.
type Options struct {
	ConfigPath string
	Backend    string
	InMemory   bool
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New loads configuration, sets up logging, and opens the repository.
func New(ctx context.Context, opts Options) (*Context, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Storage.Backend = opts.Backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.InMemory {
		cfg.Storage.Backend = config.BackendBadger
		cfg.Storage.BadgerPath = ""
	}

	initLogging(cfg.Log, opts.Debug)

	repo, err := storage.OpenRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	instrumented := metrics.Instrument(repo, m)

	formatter := output.NewFormatter()
	if opts.Format != "" {
		formatter.Format = opts.Format
	}
	if opts.ColorMode != "" {
		formatter.ColorMode = opts.ColorMode
	}

	logging.DebugContext(ctx, "runtime ready", logging.KeyBackend, cfg.Storage.Backend)

	return &Context{
		Config:    cfg,
		Formatter: formatter,
		Metrics:   m,
		Repo:      instrumented,
		Session:   app.NewSession(instrumented),
		Debug:     opts.Debug,
	}, nil
}

func initLogging(cfg config.LogConfig, debug bool) {
	if debug {
		logging.InitDebug()
		return
	}
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		JSON:   cfg.JSON,
		Output: os.Stderr,
	})
}

// Close releases the repository. Calling it again is a no-op.
func (c *Context) Close() error {
	if c.Repo == nil {
		return nil
	}
	repo := c.Repo
	c.Repo = nil
	return storage.CloseRepository(repo)
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsPlain returns true if output format is plain.
func (c *Context) IsPlain() bool {
	return c.Formatter.Format == output.FormatPlain
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}
