// Package backup exports and restores complete sessions as zip archives.
// An archive holds the session.yaml snapshot as its manifest plus one
// entry per binary asset under assets/, named <category>-<key>.
package backup

import (
	"archive/zip"
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/agentstation/utc"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
	"github.com/kardexlabs/kardex/pkg/photostore"
	"github.com/kardexlabs/kardex/pkg/snapshot"
)

// assetDir is the archive directory holding binary assets.
const assetDir = "assets"

// ExportResult summarizes a written backup archive.
type ExportResult struct {
	Path   string
	Assets int
}

// Export writes a full session backup to destPath: the snapshot manifest
// first, then every stored asset. The archive is written to a temp file
// and renamed into place so a failed export never leaves a partial backup.
func Export(ctx context.Context, destPath string, store *inventory.Store, assets *photostore.Store) (ExportResult, error) {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return ExportResult{}, errors.WrapIO("create", destPath, err)
	}
	tmpName := tmp.Name()

	result, err := writeArchive(ctx, tmp, store, assets)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return ExportResult{}, err
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return ExportResult{}, errors.WrapIO("write", destPath, err)
	}

	result.Path = destPath
	logging.Info().
		Str("path", destPath).
		Int("assets", result.Assets).
		Msg("backup exported")
	return result, nil
}

func writeArchive(ctx context.Context, f *os.File, store *inventory.Store, assets *photostore.Store) (ExportResult, error) {
	var result ExportResult
	zw := zip.NewWriter(f)

	manifest, err := snapshot.Encode(snapshot.Document{
		SavedAt: utc.Now(),
		State:   store.ExportState(),
	})
	if err != nil {
		return result, err
	}

	w, err := zw.Create(snapshot.FileName)
	if err != nil {
		return result, errors.WrapIO("write", snapshot.FileName, err)
	}
	if _, err := w.Write(manifest); err != nil {
		return result, errors.WrapIO("write", snapshot.FileName, err)
	}

	if assets != nil {
		err = assets.ForEach(ctx, func(asset photostore.Asset) error {
			select {
			case <-ctx.Done():
				return errors.ErrCanceled
			default:
			}

			name := path.Join(assetDir, asset.EntryName())
			w, err := zw.Create(name)
			if err != nil {
				return errors.WrapIO("write", name, err)
			}
			if _, err := w.Write(asset.Data); err != nil {
				return errors.WrapIO("write", name, err)
			}
			result.Assets++
			return nil
		})
		if err != nil {
			return result, err
		}
	}

	if err := zw.Close(); err != nil {
		return result, errors.WrapIO("close", "backup archive", err)
	}
	return result, nil
}
