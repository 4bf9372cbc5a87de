package kardex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
	"github.com/kardexlabs/kardex/pkg/photostore"
	"github.com/kardexlabs/kardex/pkg/snapshot"
)

func newTestSession(t *testing.T, dir string) Session {
	t.Helper()
	s, err := New(
		WithDataDir(dir),
		WithAutosaveDisabled(),
		WithLogger(logging.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMeta() ingest.SourceMeta {
	return ingest.SourceMeta{
		FileName: "listado-DG-01.pdf",
		AreaID:   "DG-01",
		AreaName: "DIRECCION GENERAL",
	}
}

func TestSessionImportAndCheckpoint(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)

	result, err := s.ImportBatch(context.Background(), []ingest.Record{
		{Key: "51001", Description: "MESA DE JUNTAS"},
		{Key: "51002", Description: "SILLA SECRETARIAL"},
	}, testMeta(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)

	// The import checkpointed on completion.
	assert.True(t, snapshot.Exists(filepath.Join(dir, snapshot.FileName)))

	ack, err := s.Checkpoint()
	require.NoError(t, err)
	assert.True(t, ack.Written)
}

func TestSessionReloadsSnapshot(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)

	_, err := s.ImportBatch(context.Background(), []ingest.Record{
		{Key: "51001", Description: "MESA DE JUNTAS"},
	}, testMeta(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := newTestSession(t, dir)
	assert.Equal(t, 1, reopened.Store().Items().Len())
	item, err := reopened.Store().Item("51001")
	require.NoError(t, err)
	assert.Equal(t, "MESA DE JUNTAS", item.Description)
	assert.Equal(t, 1, reopened.Store().AreaCount("DG-01"))
}

func TestSessionCloseWritesFinalSnapshot(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)

	// Mutate without checkpointing.
	s.Store().AddItems([]*inventory.Item{{Key: "51001", Description: "MESA", OriginArea: "DG-01"}})
	require.NoError(t, s.Close())

	reopened := newTestSession(t, dir)
	assert.True(t, reopened.Store().Items().Exists("51001"))

	// Close is idempotent.
	require.NoError(t, reopened.Close())
	require.NoError(t, reopened.Close())
}

func TestSessionCheckpointReadOnly(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)
	require.NoError(t, s.Finalize())

	ack, err := s.Checkpoint()
	require.NoError(t, err)
	assert.False(t, ack.Written)
	assert.Equal(t, "read-only", ack.Reason)

	// Finalized state survives reopen.
	require.NoError(t, s.Close())
	reopened := newTestSession(t, dir)
	assert.True(t, reopened.Store().ReadOnly())
}

func TestSessionDiffAndApply(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)
	ctx := context.Background()
	meta := testMeta()

	_, err := s.ImportBatch(ctx, []ingest.Record{
		{Key: "51001", Description: "MESA DE JUNTAS"},
		{Key: "51002", Description: "SILLA SECRETARIAL"},
	}, meta, nil)
	require.NoError(t, err)

	cs := s.ComputeDiff([]ingest.Record{
		{Key: "51001", Description: "Mesa de Juntas"}, // equivalent
		{Key: "51002", Description: "SILLA EJECUTIVA"},
		{Key: "51003", Description: "PIZARRON"},
	}, meta.FileName)

	require.Len(t, cs.Additions, 1)
	require.Len(t, cs.Modifications, 1)

	result, err := s.ApplyDiff(ctx, cs, meta)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Modified)
	assert.Equal(t, 3, s.Store().Items().Len())
}

func TestSessionBackupRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)
	ctx := context.Background()

	_, err := s.ImportBatch(ctx, []ingest.Record{
		{Key: "51001", Description: "MESA DE JUNTAS"},
	}, testMeta(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Assets().Put(ctx, photostore.Asset{
		Category: photostore.CategoryInventory, Key: "51001", Data: []byte("photo"),
	}))

	archivePath := filepath.Join(dir, "respaldo.zip")
	exported, err := s.ExportBackup(ctx, archivePath)
	require.NoError(t, err)
	assert.Equal(t, 1, exported.Assets)

	// Restore into a second, empty session.
	other := newTestSession(t, t.TempDir())
	restored, err := other.ImportBackup(ctx, archivePath, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Items)
	assert.Equal(t, 1, restored.AssetsRestored)
	assert.True(t, other.Store().Items().Exists("51001"))

	photos, err := other.RestorePhotos(ctx, archivePath)
	require.NoError(t, err)
	assert.Equal(t, 1, photos.Restored)
}

func TestSessionImportBackupBadArchive(t *testing.T) {
	s := newTestSession(t, t.TempDir())
	_, err := s.ImportBackup(context.Background(), filepath.Join(t.TempDir(), "nope.zip"), nil)
	assert.True(t, errors.IsInvalidBackupFormat(err))
}

func TestSessionClear(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, dir)
	ctx := context.Background()

	_, err := s.ImportBatch(ctx, []ingest.Record{{Key: "51001", Description: "MESA"}}, testMeta(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Assets().Put(ctx, photostore.Asset{
		Category: photostore.CategoryInventory, Key: "51001", Data: []byte("photo"),
	}))

	previousStart := s.Store().SessionStart()
	require.NoError(t, s.ClearSession(ctx))

	assert.Zero(t, s.Store().Items().Len())
	assert.False(t, snapshot.Exists(filepath.Join(dir, snapshot.FileName)))
	count, err := s.Assets().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// A cleared session starts over, it does not inherit the old start time.
	assert.True(t, s.Store().SessionStart().After(previousStart))
}

func TestSessionAutosave(t *testing.T) {
	dir := t.TempDir()
	s, err := New(
		WithDataDir(dir),
		WithAutosaveInterval(20*time.Millisecond),
		WithLogger(logging.Nop()),
	)
	require.NoError(t, err)
	defer s.Close()

	s.Store().AddItems([]*inventory.Item{{Key: "51001", Description: "MESA", OriginArea: "DG-01"}})

	snapshotPath := filepath.Join(dir, snapshot.FileName)
	require.Eventually(t, func() bool {
		return snapshot.Exists(snapshotPath)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionCustodyFacade(t *testing.T) {
	s := newTestSession(t, t.TempDir())
	ctx := context.Background()

	_, err := s.ImportBatch(ctx, []ingest.Record{
		{Key: "51001", Description: "MESA"},
	}, testMeta(), nil)
	require.NoError(t, err)

	store := s.Store()
	require.NoError(t, store.SetCustodian(inventory.Custodian{ID: "c1", Name: "JUAN PEREZ", Area: "DG-01"}))
	require.NoError(t, store.ActivateCustodian("c1"))

	result, err := s.Custody().Assign([]string{"51001"}, "OF-101")
	require.NoError(t, err)
	assert.Equal(t, []string{"51001"}, result.Assigned)
	assert.True(t, store.Finished()) // single item located
}

func TestOptionValidation(t *testing.T) {
	_, err := New(WithAutosaveInterval(0))
	assert.Error(t, err)

	_, err = New(WithImportChunkSize(-1))
	assert.Error(t, err)
}
