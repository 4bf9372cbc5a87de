package backup

import (
	"archive/zip"
	"context"
	"io"
	"path"
	"strings"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
	"github.com/kardexlabs/kardex/pkg/photostore"
	"github.com/kardexlabs/kardex/pkg/snapshot"
)

// ProgressFunc receives the number of archive entries processed so far
// and the total.
type ProgressFunc func(processed, total int)

// RestoreResult summarizes a full restore.
type RestoreResult struct {
	Items          int
	AssetsRestored int
	AssetsSkipped  int
}

// PhotoRestoreResult summarizes a selective photo restore.
type PhotoRestoreResult struct {
	Restored int
	Ignored  int
}

// Import restores a full session from the archive at srcPath, replacing
// the store contents and the asset database.
//
// The manifest is validated first: an archive without a parsable
// session.yaml fails with a BackupFormatError before anything is
// modified. Asset entries are then restored best effort; an unreadable or
// unrecognized entry is skipped and counted, never fatal.
func Import(ctx context.Context, srcPath string, store *inventory.Store, assets *photostore.Store, progress ProgressFunc) (RestoreResult, error) {
	var result RestoreResult

	zr, err := zip.OpenReader(srcPath)
	if err != nil {
		return result, &errors.BackupFormatError{Message: "not a zip archive", Err: err}
	}
	defer zr.Close()

	doc, err := readManifest(&zr.Reader)
	if err != nil {
		return result, err
	}

	store.RestoreState(doc.State)
	result.Items = store.Items().Len()

	if assets != nil {
		if err := assets.Clear(ctx); err != nil {
			return result, err
		}
	}

	entries := assetEntries(&zr.Reader)
	total := len(entries)
	for n, entry := range entries {
		select {
		case <-ctx.Done():
			return result, errors.ErrCanceled
		default:
		}

		if err := restoreAsset(ctx, entry, assets, nil); err != nil {
			logging.Warn().Err(err).Str("entry", entry.Name).Msg("skipping backup entry")
			result.AssetsSkipped++
		} else {
			result.AssetsRestored++
		}

		if progress != nil {
			progress(n+1, total)
		}
	}

	store.LogActivity("restore", srcPath)
	logging.Info().
		Str("path", srcPath).
		Int("items", result.Items).
		Int("assets", result.AssetsRestored).
		Int("skipped", result.AssetsSkipped).
		Msg("backup restored")
	return result, nil
}

// RestorePhotos restores only the binary assets from the archive at
// srcPath, leaving the session state untouched. Assets whose owner no
// longer exists in the store are ignored rather than resurrected.
func RestorePhotos(ctx context.Context, srcPath string, store *inventory.Store, assets *photostore.Store) (PhotoRestoreResult, error) {
	var result PhotoRestoreResult

	zr, err := zip.OpenReader(srcPath)
	if err != nil {
		return result, &errors.BackupFormatError{Message: "not a zip archive", Err: err}
	}
	defer zr.Close()

	// Validate the manifest even though its state is not applied; an
	// archive without one is not a backup.
	if _, err := readManifest(&zr.Reader); err != nil {
		return result, err
	}

	keep := func(category, key string) bool {
		switch category {
		case photostore.CategoryInventory:
			return store.Items().Exists(key)
		case photostore.CategoryAdditional:
			_, ok := store.Additionals().Get(key)
			return ok
		case photostore.CategoryLocation, photostore.CategoryLayout:
			return true
		default:
			return false
		}
	}

	for _, entry := range assetEntries(&zr.Reader) {
		select {
		case <-ctx.Done():
			return result, errors.ErrCanceled
		default:
		}

		if err := restoreAsset(ctx, entry, assets, keep); err != nil {
			result.Ignored++
			continue
		}
		result.Restored++
	}

	store.LogActivity("restore-photos", srcPath)
	return result, nil
}

// errEntryIgnored marks entries filtered out by a keep predicate.
var errEntryIgnored = errors.New("entry ignored")

func restoreAsset(ctx context.Context, entry *zip.File, assets *photostore.Store, keep func(category, key string) bool) error {
	category, key, ok := photostore.SplitEntryName(path.Base(entry.Name))
	if !ok {
		return errEntryIgnored
	}
	if keep != nil && !keep(category, key) {
		return errEntryIgnored
	}
	if assets == nil {
		return errEntryIgnored
	}

	rc, err := entry.Open()
	if err != nil {
		return errors.WrapIO("read", entry.Name, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return errors.WrapIO("read", entry.Name, err)
	}

	return assets.Put(ctx, photostore.Asset{Category: category, Key: key, Data: data})
}

func readManifest(zr *zip.Reader) (snapshot.Document, error) {
	for _, entry := range zr.File {
		if entry.Name != snapshot.FileName {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return snapshot.Document{}, &errors.BackupFormatError{Entry: entry.Name, Message: "unreadable manifest", Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return snapshot.Document{}, &errors.BackupFormatError{Entry: entry.Name, Message: "unreadable manifest", Err: err}
		}

		doc, err := snapshot.Decode(data)
		if err != nil {
			return snapshot.Document{}, &errors.BackupFormatError{Entry: entry.Name, Message: "corrupt manifest", Err: err}
		}
		return doc, nil
	}
	return snapshot.Document{}, &errors.BackupFormatError{Message: "missing " + snapshot.FileName}
}

func assetEntries(zr *zip.Reader) []*zip.File {
	var entries []*zip.File
	for _, entry := range zr.File {
		if strings.HasPrefix(entry.Name, assetDir+"/") && !strings.HasSuffix(entry.Name, "/") {
			entries = append(entries, entry)
		}
	}
	return entries
}
