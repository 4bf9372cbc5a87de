package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
)

func seedStore(t *testing.T) *inventory.Store {
	t.Helper()
	store := inventory.NewStore()
	errs := store.AddItems([]*inventory.Item{
		{Key: "51001", Description: "MESA DE JUNTAS", Serial: "SN-1", OriginArea: "DG-01", FileName: "listado.pdf"},
		{Key: "51002", Description: "SILLA SECRETARIAL", OriginArea: "DG-01", FileName: "listado.pdf"},
	})
	require.Empty(t, errs)
	require.NoError(t, store.SetCustodian(inventory.Custodian{ID: "c1", Name: "JUAN PEREZ", Area: "DG-01"}))
	require.NoError(t, store.ActivateCustodian("c1"))
	store.EnsureArea("DG-01", "DIRECCION GENERAL")
	store.MarkAreaCompleted("DG-01")
	store.LogActivity("import", "listado.pdf")
	return store
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	store := seedStore(t)

	doc, err := Save(path, store)
	require.NoError(t, err)
	assert.False(t, doc.SavedAt.IsZero())
	assert.True(t, Exists(path))

	restored := inventory.NewStore()
	loaded, err := Load(path, restored)
	require.NoError(t, err)
	assert.Equal(t, doc.SavedAt, loaded.SavedAt)

	assert.Equal(t, 2, restored.Items().Len())
	item, err := restored.Item("51001")
	require.NoError(t, err)
	assert.Equal(t, "MESA DE JUNTAS", item.Description)

	// Derived indices are rebuilt on load, not persisted.
	assert.Equal(t, []string{"51001"}, restored.SerialLookup("SN-1"))
	assert.Equal(t, 2, restored.AreaCount("DG-01"))

	assert.True(t, restored.IsAreaCompleted("DG-01"))
	assert.Equal(t, "DIRECCION GENERAL", restored.AreaName("DG-01"))
	assert.Len(t, restored.ActivityLog(), 1)

	active, ok := restored.ActiveCustodian()
	require.True(t, ok)
	assert.Equal(t, "JUAN PEREZ", active.Name)
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "data", FileName)

	_, err := Save(path, seedStore(t))
	require.NoError(t, err)
	assert.True(t, Exists(path))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	_, err := Save(path, seedStore(t))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	store := seedStore(t)

	_, err := Save(path, store)
	require.NoError(t, err)

	require.NoError(t, store.DeleteItem("51002"))
	_, err = Save(path, store)
	require.NoError(t, err)

	restored := inventory.NewStore()
	_, err = Load(path, restored)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Items().Len())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	_, err := Load(path, inventory.NewStore())
	assert.True(t, errors.IsNotFound(err))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: [half"), 0o644))

	_, err := Load(path, inventory.NewStore())
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	_, err := Save(path, seedStore(t))
	require.NoError(t, err)

	require.NoError(t, Remove(path))
	assert.False(t, Exists(path))

	// Removing an absent snapshot is not an error.
	require.NoError(t, Remove(path))
}

func TestAckString(t *testing.T) {
	ack := Ack{Written: false, Reason: "read-only"}
	assert.Contains(t, ack.String(), "read-only")
}
