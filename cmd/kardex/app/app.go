// Package app provides the application context for the kardex CLI:
// configuration loading, logger setup and lazy session construction.
package app

import (
	"context"
	"sync"

	"github.com/kardexlabs/kardex"
	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/logging"
)

// App holds the CLI application's dependencies: configuration, logger and
// the inventory session.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *logging.Logger

	mu      sync.Mutex
	session kardex.Session
}

// New creates an App with the given version information and loads
// configuration from the environment.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}

	logger := NewLogger(config)
	return &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		logger:  &logger,
	}, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger { return a.logger }

// ReloadLogger rebuilds the logger after flag parsing updates the config.
func (a *App) ReloadLogger() {
	logger := NewLogger(a.config)
	a.logger = &logger
}

// Session returns the inventory session, creating it lazily from the
// configured data directory.
func (a *App) Session() (kardex.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.session, nil
	}

	opts := []kardex.Option{
		kardex.WithDataDir(a.config.DataDir),
		kardex.WithLogger(a.logger),
	}
	if a.config.AutosaveDisabled {
		opts = append(opts, kardex.WithAutosaveDisabled())
	}
	if a.config.AutosaveInterval > 0 {
		opts = append(opts, kardex.WithAutosaveInterval(a.config.AutosaveInterval))
	}
	if a.config.ImportChunkSize > 0 {
		opts = append(opts, kardex.WithImportChunkSize(a.config.ImportChunkSize))
	}

	session, err := kardex.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "session", a.config.DataDir, err)
	}
	a.session = session
	return session, nil
}

// Shutdown closes the session if one was created, flushing a final
// snapshot to disk.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}
