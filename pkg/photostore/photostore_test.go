package photostore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardexlabs/kardex/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", Data: []byte("jpeg-bytes")})
	require.NoError(t, err)

	asset, err := store.Get(ctx, CategoryInventory, "51001")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), asset.Data)
	assert.Equal(t, "image/jpeg", asset.MimeType) // default

	exists, err := store.Exists(ctx, CategoryInventory, "51001")
	require.NoError(t, err)
	assert.True(t, exists)

	// Put replaces.
	err = store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", MimeType: "image/png", Data: []byte("png-bytes")})
	require.NoError(t, err)
	asset, err = store.Get(ctx, CategoryInventory, "51001")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), asset.Data)
	assert.Equal(t, "image/png", asset.MimeType)

	require.NoError(t, store.Delete(ctx, CategoryInventory, "51001"))
	_, err = store.Get(ctx, CategoryInventory, "51001")
	assert.True(t, errors.IsNotFound(err))

	// Deleting an absent asset is fine.
	require.NoError(t, store.Delete(ctx, CategoryInventory, "51001"))
}

func TestPutValidation(t *testing.T) {
	store := openTestStore(t)
	err := store.Put(context.Background(), Asset{Category: "", Key: "51001"})
	assert.True(t, errors.IsValidationError(err))
}

func TestCategoriesAreIndependent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", Data: []byte("a")}))
	require.NoError(t, store.Put(ctx, Asset{Category: CategoryLocation, Key: "51001", Data: []byte("b")}))

	asset, err := store.Get(ctx, CategoryLocation, "51001")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), asset.Data)

	require.NoError(t, store.Delete(ctx, CategoryLocation, "51001"))
	_, err = store.Get(ctx, CategoryInventory, "51001")
	assert.NoError(t, err)
}

func TestKeysAndCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Asset{Category: CategoryInventory, Key: "51002", Data: []byte("a")}))
	require.NoError(t, store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", Data: []byte("b")}))
	require.NoError(t, store.Put(ctx, Asset{Category: CategoryLayout, Key: "DG-01", Data: []byte("c")}))

	keys, err := store.Keys(ctx, CategoryInventory)
	require.NoError(t, err)
	assert.Equal(t, []string{"51001", "51002"}, keys)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestForEachOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Asset{Category: CategoryLocation, Key: "OF-101", Data: []byte("x")}))
	require.NoError(t, store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", Data: []byte("y")}))

	var names []string
	err := store.ForEach(ctx, func(asset Asset) error {
		names = append(names, asset.EntryName())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory-51001", "location-OF-101"}, names)
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", Data: []byte("x")}))
	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRemoveItemAsset(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Asset{Category: CategoryInventory, Key: "51001", Data: []byte("x")}))
	require.NoError(t, store.RemoveItemAsset("51001"))

	_, err := store.Get(ctx, CategoryInventory, "51001")
	assert.True(t, errors.IsNotFound(err))
}

func TestSplitEntryName(t *testing.T) {
	category, key, ok := SplitEntryName("inventory-51001")
	require.True(t, ok)
	assert.Equal(t, CategoryInventory, category)
	assert.Equal(t, "51001", key)

	category, key, ok = SplitEntryName("layout-DG-01")
	require.True(t, ok)
	assert.Equal(t, CategoryLayout, category)
	assert.Equal(t, "DG-01", key)

	_, _, ok = SplitEntryName("unknown-51001")
	assert.False(t, ok)
}

func TestOpenIdempotentMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), Asset{Category: CategoryInventory, Key: "51001", Data: []byte("x")}))
	require.NoError(t, store.Close())

	// Reopening applies no duplicate migrations and keeps data.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	asset, err := store.Get(context.Background(), CategoryInventory, "51001")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), asset.Data)
}
