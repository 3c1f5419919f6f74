// Package app provides the application context and dependency management
// for the bodsmap CLI. It centralizes configuration, logging, and the
// resources a conversion run holds open.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/bodsmap/pkg/cache"
	"github.com/agentstation/bodsmap/pkg/errors"
)

// App represents the bodsmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	viper  *viper.Viper
	config *Config

	// Logger, fixed when injected with WithLogger
	logger      *zerolog.Logger
	loggerFixed bool

	// out receives command output; nil means the command's stdout.
	out io.Writer

	// spill is the SQLite cache of the current run, if any.
	mu    sync.Mutex
	spill *cache.SQLite
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		viper:   NewViper(),
	}

	config, err := LoadConfig(app.viper)
	if err != nil {
		return nil, errors.WrapConfig("app", "failed to load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Shutdown releases resources left open by a failed run.
func (a *App) Shutdown(_ context.Context) error {
	return a.closeSpill()
}

func (a *App) openSpill(ctx context.Context, path string) (*cache.SQLite, error) {
	spill, err := cache.NewSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.spill = spill
	a.mu.Unlock()
	return spill, nil
}

func (a *App) closeSpill() error {
	a.mu.Lock()
	spill := a.spill
	a.spill = nil
	a.mu.Unlock()

	if spill == nil {
		return nil
	}
	return spill.Close()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithLogger sets a custom logger. Flags no longer reconfigure it.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.loggerFixed = true
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
