package kardex

import (
	"path/filepath"
	"time"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/logging"
	"github.com/kardexlabs/kardex/pkg/snapshot"
)

// DefaultAutosaveInterval is how often the session checkpoints itself.
const DefaultAutosaveInterval = 30 * time.Second

// Option is a function that configures a Session.
type Option func(*config) error

// config holds the session configuration assembled from options.
type config struct {
	dataDir          string
	snapshotPath     string
	assetsPath       string
	autosaveEnabled  bool
	autosaveInterval time.Duration
	importChunkSize  int
	logger           *logging.Logger
}

func defaultConfig() *config {
	cfg := &config{
		dataDir:          ".",
		autosaveEnabled:  true,
		autosaveInterval: DefaultAutosaveInterval,
		importChunkSize:  ingest.DefaultChunkSize,
		logger:           logging.Default(),
	}
	cfg.applyDataDir()
	return cfg
}

// applyDataDir derives the default file locations from the data directory
// for any path not set explicitly.
func (c *config) applyDataDir() {
	if c.snapshotPath == "" {
		c.snapshotPath = filepath.Join(c.dataDir, snapshot.FileName)
	}
	if c.assetsPath == "" {
		c.assetsPath = filepath.Join(c.dataDir, "assets.db")
	}
}

// WithDataDir sets the directory holding the snapshot and asset database.
func WithDataDir(dir string) Option {
	return func(c *config) error {
		c.dataDir = dir
		c.snapshotPath = ""
		c.assetsPath = ""
		c.applyDataDir()
		return nil
	}
}

// WithSnapshotPath overrides the snapshot file location.
func WithSnapshotPath(path string) Option {
	return func(c *config) error {
		c.snapshotPath = path
		return nil
	}
}

// WithAssetsPath overrides the asset database location.
func WithAssetsPath(path string) Option {
	return func(c *config) error {
		c.assetsPath = path
		return nil
	}
}

// WithAutosaveInterval configures how often the session checkpoints.
func WithAutosaveInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval <= 0 {
			return errors.NewValidationError("interval", interval, "autosave interval must be positive")
		}
		c.autosaveInterval = interval
		return nil
	}
}

// WithAutosaveDisabled turns off periodic checkpoints. Explicit
// Checkpoint calls and the final save on Close still happen.
func WithAutosaveDisabled() Option {
	return func(c *config) error {
		c.autosaveEnabled = false
		return nil
	}
}

// WithImportChunkSize configures how many records each import chunk holds.
func WithImportChunkSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.NewValidationError("chunk size", n, "import chunk size must be positive")
		}
		c.importChunkSize = n
		return nil
	}
}

// WithLogger overrides the session logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}
