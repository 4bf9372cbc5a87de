package reconcile

import (
	"github.com/google/uuid"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
)

// AssetRemover deletes the binary asset attached to an item, if any.
// The photo store implements it; apply uses it to clean up after removals.
type AssetRemover interface {
	RemoveItemAsset(key string) error
}

// ApplyResult summarizes an applied change set.
type ApplyResult struct {
	BatchID  string
	Added    int
	Modified int
	Removed  int
	Skipped  int
}

// Apply executes the included entries of a change set against the store.
//
// The store may have changed since the diff was computed, so every target
// is re-validated: an addition whose key now exists, or a modification or
// removal whose item has vanished, is skipped and counted rather than
// failed. Inserted items start unlocated under a fresh batch id. Removals
// also drop the item's photo when a remover is supplied; asset cleanup
// failures are logged but never abort the apply.
func Apply(store *inventory.Store, cs *ChangeSet, meta ingest.SourceMeta, remover AssetRemover) (ApplyResult, error) {
	if store.ReadOnly() {
		return ApplyResult{}, errors.ErrReadOnly
	}

	logger := logging.Default()
	result := ApplyResult{BatchID: uuid.NewString()}

	var additions []*inventory.Item
	for _, addition := range cs.Additions {
		if !addition.Include {
			continue
		}
		if store.Items().Exists(addition.Record.Key) {
			result.Skipped++
			continue
		}
		additions = append(additions, &inventory.Item{
			Key:         addition.Record.Key,
			Description: addition.Record.Description,
			Brand:       addition.Record.Brand,
			Model:       addition.Record.Model,
			Serial:      addition.Record.Serial,
			OriginArea:  meta.AreaID,
			BookType:    meta.BookType,
			FileName:    cs.FileName,
			BatchID:     result.BatchID,
			PrintDate:   meta.PrintDate,
		})
	}
	if len(additions) > 0 {
		errs := store.AddItems(additions)
		result.Added = len(additions) - len(errs)
		result.Skipped += len(errs)
	}

	for _, modification := range cs.Modifications {
		if !modification.Include {
			continue
		}
		err := store.SetDescriptive(modification.Key,
			modification.Record.Description,
			modification.Record.Brand,
			modification.Record.Model,
			modification.Record.Serial)
		if err != nil {
			result.Skipped++
			continue
		}
		result.Modified++
	}

	for _, removal := range cs.Removals {
		if !removal.Include {
			continue
		}
		if err := store.DeleteItem(removal.Key); err != nil {
			result.Skipped++
			continue
		}
		result.Removed++
		if remover != nil {
			if err := remover.RemoveItemAsset(removal.Key); err != nil {
				logger.Warn().Err(err).Str("key", removal.Key).Msg("asset cleanup failed after removal")
			}
		}
	}

	if result.Added > 0 {
		// The dataset grew; a finished inventory is finished no longer.
		store.SetFinished(false)
	}
	if result.Added+result.Modified+result.Removed > 0 {
		store.LogActivity("reconcile", cs.FileName)
	}

	logger.Info().
		Str("file", cs.FileName).
		Int("added", result.Added).
		Int("modified", result.Modified).
		Int("removed", result.Removed).
		Int("skipped", result.Skipped).
		Msg("change set applied")

	return result, nil
}
