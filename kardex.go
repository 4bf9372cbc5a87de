// Package kardex manages a physical inventory reconciliation session: the
// canonical item store, custodian assignments, list reconciliation,
// periodic snapshot checkpoints, binary assets and full-session backups.
package kardex

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentstation/utc"

	"github.com/kardexlabs/kardex/pkg/backup"
	"github.com/kardexlabs/kardex/pkg/custody"
	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/photostore"
	"github.com/kardexlabs/kardex/pkg/reconcile"
	"github.com/kardexlabs/kardex/pkg/snapshot"
)

// Session manages one inventory session with automatic persistence.
type Session interface {
	// Store returns the canonical store for reads and entity management.
	Store() *inventory.Store

	// Custody returns the assignment engine.
	Custody() *custody.Engine

	// Assets returns the binary asset store.
	Assets() *photostore.Store

	// ImportBatch imports records from a parsed list, suppressing
	// autosave for the duration and checkpointing once at the end.
	ImportBatch(ctx context.Context, records []ingest.Record, meta ingest.SourceMeta, progress ingest.ProgressFunc) (ingest.Result, error)

	// ReplaceFile re-imports a corrected list, replacing the items
	// previously imported from the same file.
	ReplaceFile(ctx context.Context, records []ingest.Record, meta ingest.SourceMeta) (ingest.Result, error)

	// ComputeDiff compares a freshly parsed list against the whole
	// store; fileName labels the change set for apply.
	ComputeDiff(records []ingest.Record, fileName string) *reconcile.ChangeSet

	// ApplyDiff executes the included entries of a change set.
	ApplyDiff(ctx context.Context, cs *reconcile.ChangeSet, meta ingest.SourceMeta) (reconcile.ApplyResult, error)

	// Checkpoint writes the session snapshot now. In a read-only session
	// or while a bulk operation is in flight the write is suppressed and
	// the acknowledgement says why.
	Checkpoint() (snapshot.Ack, error)

	// Finalize marks the session read-only and writes a last snapshot.
	Finalize() error

	// ClearSession wipes the store, the assets and the snapshot file.
	ClearSession(ctx context.Context) error

	// ExportBackup writes a full session backup archive to destPath.
	ExportBackup(ctx context.Context, destPath string) (backup.ExportResult, error)

	// ImportBackup replaces the session with the archive's contents.
	ImportBackup(ctx context.Context, srcPath string, progress backup.ProgressFunc) (backup.RestoreResult, error)

	// RestorePhotos restores only the binary assets from an archive,
	// skipping assets whose owner is no longer in the store.
	RestorePhotos(ctx context.Context, srcPath string) (backup.PhotoRestoreResult, error)

	// Close stops autosave, writes a final snapshot and releases the
	// asset database.
	Close() error
}

// session is the internal implementation of the Session interface.
type session struct {
	mu       sync.Mutex
	config   *config
	store    *inventory.Store
	custody  *custody.Engine
	importer *ingest.Importer
	assets   *photostore.Store

	bulkDepth int
	stopCh    chan struct{}
	autosave  sync.WaitGroup
	closed    bool
}

// New creates a Session with the given options, loading an existing
// snapshot from the data directory when one is present.
func New(opts ...Option) (Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	store := inventory.NewStore()
	if snapshot.Exists(cfg.snapshotPath) {
		if _, err := snapshot.Load(cfg.snapshotPath, store); err != nil {
			return nil, err
		}
	}

	assets, err := photostore.Open(cfg.assetsPath)
	if err != nil {
		return nil, err
	}

	s := &session{
		config:   cfg,
		store:    store,
		custody:  custody.NewEngine(store, custody.WithLogger(cfg.logger)),
		importer: ingest.NewImporter(store, ingest.WithChunkSize(cfg.importChunkSize), ingest.WithLogger(cfg.logger)),
		assets:   assets,
		stopCh:   make(chan struct{}),
	}

	if cfg.autosaveEnabled {
		s.startAutosave()
	}
	return s, nil
}

func (s *session) Store() *inventory.Store   { return s.store }
func (s *session) Custody() *custody.Engine  { return s.custody }
func (s *session) Assets() *photostore.Store { return s.assets }

// beginBulk suppresses autosave checkpoints until the matching endBulk.
func (s *session) beginBulk() {
	s.mu.Lock()
	s.bulkDepth++
	s.mu.Unlock()
}

func (s *session) endBulk() {
	s.mu.Lock()
	if s.bulkDepth > 0 {
		s.bulkDepth--
	}
	s.mu.Unlock()
}

func (s *session) bulkInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkDepth > 0
}

// ImportBatch imports records, suppressing autosave for the duration and
// checkpointing once when done.
func (s *session) ImportBatch(ctx context.Context, records []ingest.Record, meta ingest.SourceMeta, progress ingest.ProgressFunc) (ingest.Result, error) {
	s.beginBulk()
	result, err := s.importer.ImportBatchProgress(ctx, records, meta, progress)
	s.endBulk()
	if err != nil {
		return result, err
	}
	if _, err := s.Checkpoint(); err != nil {
		return result, err
	}
	return result, nil
}

// ReplaceFile re-imports a corrected list.
func (s *session) ReplaceFile(ctx context.Context, records []ingest.Record, meta ingest.SourceMeta) (ingest.Result, error) {
	s.beginBulk()
	result, err := s.importer.ReplaceFile(ctx, records, meta)
	s.endBulk()
	if err != nil {
		return result, err
	}
	if _, err := s.Checkpoint(); err != nil {
		return result, err
	}
	return result, nil
}

// ComputeDiff compares a parsed list against the current store.
func (s *session) ComputeDiff(records []ingest.Record, fileName string) *reconcile.ChangeSet {
	return reconcile.ComputeDiff(s.store, records, fileName)
}

// ApplyDiff executes the included entries of a change set.
func (s *session) ApplyDiff(ctx context.Context, cs *reconcile.ChangeSet, meta ingest.SourceMeta) (reconcile.ApplyResult, error) {
	s.beginBulk()
	result, err := reconcile.Apply(s.store, cs, meta, s.assets)
	s.endBulk()
	if err != nil {
		return result, err
	}
	if _, err := s.Checkpoint(); err != nil {
		return result, err
	}
	return result, nil
}

// Finalize marks the session read-only and writes a final snapshot. It is
// idempotent.
func (s *session) Finalize() error {
	s.store.SetReadOnly(true)
	s.store.LogActivity("finalize", "session marked read-only")
	_, err := snapshot.Save(s.config.snapshotPath, s.store)
	return err
}

// ClearSession wipes the store, the assets and the snapshot file, leaving
// a fresh writable session whose start time is now.
func (s *session) ClearSession(ctx context.Context) error {
	s.store.RestoreState(inventory.State{SessionStart: utc.Now()})
	if err := s.assets.Clear(ctx); err != nil {
		return err
	}
	return snapshot.Remove(s.config.snapshotPath)
}

// ExportBackup writes a full session backup archive.
func (s *session) ExportBackup(ctx context.Context, destPath string) (backup.ExportResult, error) {
	return backup.Export(ctx, destPath, s.store, s.assets)
}

// ImportBackup replaces the session with an archive's contents and
// checkpoints the restored state.
func (s *session) ImportBackup(ctx context.Context, srcPath string, progress backup.ProgressFunc) (backup.RestoreResult, error) {
	s.beginBulk()
	result, err := backup.Import(ctx, srcPath, s.store, s.assets, progress)
	s.endBulk()
	if err != nil {
		return result, err
	}
	if _, err := s.Checkpoint(); err != nil {
		return result, err
	}
	return result, nil
}

// RestorePhotos restores only the binary assets from an archive.
func (s *session) RestorePhotos(ctx context.Context, srcPath string) (backup.PhotoRestoreResult, error) {
	return backup.RestorePhotos(ctx, srcPath, s.store, s.assets)
}

// Close stops autosave, writes a final snapshot and closes the asset
// database.
func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopCh)
	s.autosave.Wait()

	var firstErr error
	if !s.store.ReadOnly() {
		if _, err := snapshot.Save(s.config.snapshotPath, s.store); err != nil {
			firstErr = err
		}
	}
	if err := s.assets.Close(); err != nil && firstErr == nil {
		firstErr = errors.WrapIO("close", s.config.assetsPath, err)
	}
	return firstErr
}
