// Package ingest imports batches of inventory records into the canonical
// store. Imports are chunked so progress can be reported and cancellation
// honored on large lists, and every import is tagged with a batch id so a
// bad list can be rolled back as a unit.
package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
)

// DefaultChunkSize is the number of records inserted per chunk.
const DefaultChunkSize = 500

// keyPattern accepts the two key shapes found on printed lists: a 5-6 digit
// catalogue number, or a fractional decimal ("0.xxx") used for sub-numbered
// assets.
var keyPattern = regexp.MustCompile(`^(?:\d{5,6}|0\.\d+)$`)

// ValidKey reports whether s is an acceptable item key.
func ValidKey(s string) bool {
	return keyPattern.MatchString(s)
}

// Record is one row extracted from a source list.
type Record struct {
	Key         string
	Description string
	Brand       string
	Model       string
	Serial      string
}

// SourceMeta describes the list a batch of records came from.
type SourceMeta struct {
	FileName    string
	BookType    string
	AreaID      string
	AreaName    string
	PrintDate   string
	Responsible *inventory.Responsible
}

// Result summarizes a completed import.
type Result struct {
	BatchID  string
	Inserted int
	Rejected int
}

// ProgressFunc receives the number of records processed so far and the
// total. Processed counts are monotonically non-decreasing.
type ProgressFunc func(processed, total int)

// Importer inserts record batches into a store.
type Importer struct {
	store     *inventory.Store
	chunkSize int
	logger    *logging.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithChunkSize overrides the default chunk size.
func WithChunkSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.chunkSize = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *logging.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewImporter creates an Importer over the given store.
func NewImporter(store *inventory.Store, opts ...Option) *Importer {
	importer := &Importer{
		store:     store,
		chunkSize: DefaultChunkSize,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(importer)
	}
	return importer
}

// ImportBatch inserts the records into the store under a fresh batch id.
//
// Records with malformed keys or keys already present in the store (or
// duplicated within the batch) are rejected individually; the rest are
// inserted. Insertion is chunked: between chunks the context is checked
// and progress reported. A successful import with at least one insertion
// clears the global finished flag, since the dataset has grown.
func (i *Importer) ImportBatch(ctx context.Context, records []Record, meta SourceMeta) (Result, error) {
	if i.store.ReadOnly() {
		return Result{}, errors.ErrReadOnly
	}
	return i.importRecords(ctx, records, meta, nil)
}

// ImportBatchProgress is ImportBatch with per-chunk progress reporting.
func (i *Importer) ImportBatchProgress(ctx context.Context, records []Record, meta SourceMeta, progress ProgressFunc) (Result, error) {
	if i.store.ReadOnly() {
		return Result{}, errors.ErrReadOnly
	}
	return i.importRecords(ctx, records, meta, progress)
}

// ReplaceFile removes every item previously imported from meta.FileName and
// imports the records in its place. Used when a corrected list is loaded.
func (i *Importer) ReplaceFile(ctx context.Context, records []Record, meta SourceMeta) (Result, error) {
	if i.store.ReadOnly() {
		return Result{}, errors.ErrReadOnly
	}

	removed := i.store.RemoveByFileName(meta.FileName)
	if removed > 0 {
		i.logger.Info().
			Str("file", meta.FileName).
			Int("removed", removed).
			Msg("replaced previously imported file")
	}
	return i.importRecords(ctx, records, meta, nil)
}

func (i *Importer) importRecords(ctx context.Context, records []Record, meta SourceMeta, progress ProgressFunc) (Result, error) {
	result := Result{BatchID: uuid.NewString()}
	total := len(records)
	seen := make(map[string]bool, total)

	for start := 0; start < total; start += i.chunkSize {
		select {
		case <-ctx.Done():
			return result, errors.ErrCanceled
		default:
		}

		end := start + i.chunkSize
		if end > total {
			end = total
		}

		chunk := make([]*inventory.Item, 0, end-start)
		for _, record := range records[start:end] {
			key := strings.TrimSpace(record.Key)
			if !ValidKey(key) || seen[key] {
				result.Rejected++
				continue
			}
			seen[key] = true
			chunk = append(chunk, &inventory.Item{
				Key:         key,
				Description: strings.TrimSpace(record.Description),
				Brand:       strings.TrimSpace(record.Brand),
				Model:       strings.TrimSpace(record.Model),
				Serial:      strings.TrimSpace(record.Serial),
				OriginArea:  meta.AreaID,
				BookType:    meta.BookType,
				FileName:    meta.FileName,
				BatchID:     result.BatchID,
				PrintDate:   meta.PrintDate,
			})
		}

		errs := i.store.AddItems(chunk)
		result.Inserted += len(chunk) - len(errs)
		result.Rejected += len(errs)

		if progress != nil {
			progress(end, total)
		}
	}

	i.registerArea(meta)

	if result.Inserted > 0 {
		// New items mean the inventory can no longer be finished.
		i.store.SetFinished(false)
		i.store.LogActivity("import", meta.FileName)
	}

	i.logger.Info().
		Str("batch", result.BatchID).
		Str("file", meta.FileName).
		Str("area", meta.AreaID).
		Int("inserted", result.Inserted).
		Int("rejected", result.Rejected).
		Msg("import complete")

	return result, nil
}

func (i *Importer) registerArea(meta SourceMeta) {
	if meta.AreaID == "" {
		return
	}
	i.store.EnsureArea(meta.AreaID, meta.AreaName)
	if meta.Responsible != nil {
		i.store.SetResponsible(meta.AreaID, *meta.Responsible)
	}
}
