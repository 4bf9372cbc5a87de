package reconcile

import (
	"sort"

	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/inventory"
)

// minKeyLength guards the diff against truncated keys produced by bad
// extractions. Shorter strings are rejected rather than matched.
const minKeyLength = 4

// FieldChange is one descriptive field differing between the stored item
// and the incoming record.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// Addition is an incoming record whose key is not in the store. Included
// in the apply by default.
type Addition struct {
	Record  ingest.Record
	Include bool
}

// Modification is an existing item whose descriptive fields differ from
// the incoming record after normalization. Included by default.
type Modification struct {
	Key     string
	Record  ingest.Record
	Fields  []FieldChange
	Include bool
}

// Removal is a stored item absent from the incoming list. Excluded by
// default: a missing row is more often an extraction defect than a real
// retirement, so removals must be opted into.
type Removal struct {
	Key     string
	Include bool
}

// ChangeSet is the outcome of comparing an incoming list against every
// item in the store. FileName records which list produced the set and is
// carried onto inserted items at apply time. Entries are sorted by key so
// review and apply order is deterministic.
type ChangeSet struct {
	FileName      string
	Additions     []*Addition
	Modifications []*Modification
	Removals      []*Removal
	Rejected      int
}

// Empty reports whether the change set carries no entries at all.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Additions) == 0 && len(cs.Modifications) == 0 && len(cs.Removals) == 0
}

// IncludedCount returns how many entries are currently marked for apply.
func (cs *ChangeSet) IncludedCount() int {
	count := 0
	for _, a := range cs.Additions {
		if a.Include {
			count++
		}
	}
	for _, m := range cs.Modifications {
		if m.Include {
			count++
		}
	}
	for _, r := range cs.Removals {
		if r.Include {
			count++
		}
	}
	return count
}

// comparableFields lists the descriptive fields the diff inspects, in
// report order.
var comparableFields = []struct {
	name string
	get  func(*inventory.Item) string
	rec  func(ingest.Record) string
}{
	{"description", func(i *inventory.Item) string { return i.Description }, func(r ingest.Record) string { return r.Description }},
	{"brand", func(i *inventory.Item) string { return i.Brand }, func(r ingest.Record) string { return r.Brand }},
	{"model", func(i *inventory.Item) string { return i.Model }, func(r ingest.Record) string { return r.Model }},
	{"serial", func(i *inventory.Item) string { return i.Serial }, func(r ingest.Record) string { return r.Serial }},
}

// ComputeDiff compares the incoming records against the full store: an
// item's key is canonical regardless of which file it arrived from, so a
// key already in the store matches no matter its source, and every stored
// key absent from the incoming list becomes a removal candidate.
//
// Records with keys shorter than minKeyLength or duplicated within the
// incoming list are rejected and counted, never matched. Keys present in
// both sides whose descriptive fields are equivalent after normalization
// produce no entry.
func ComputeDiff(store *inventory.Store, records []ingest.Record, fileName string) *ChangeSet {
	cs := &ChangeSet{FileName: fileName}

	existing := make(map[string]*inventory.Item, store.Items().Len())
	store.Items().ForEach(func(key string, item *inventory.Item) bool {
		existing[key] = item
		return true
	})

	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if len(record.Key) < minKeyLength || seen[record.Key] {
			cs.Rejected++
			continue
		}
		seen[record.Key] = true

		item, found := existing[record.Key]
		if !found {
			cs.Additions = append(cs.Additions, &Addition{Record: record, Include: true})
			continue
		}

		var changes []FieldChange
		for _, field := range comparableFields {
			oldValue := field.get(item)
			newValue := field.rec(record)
			if !Equivalent(oldValue, newValue) {
				changes = append(changes, FieldChange{Field: field.name, Old: oldValue, New: newValue})
			}
		}
		if len(changes) > 0 {
			cs.Modifications = append(cs.Modifications, &Modification{
				Key:     record.Key,
				Record:  record,
				Fields:  changes,
				Include: true,
			})
		}
	}

	for key := range existing {
		if !seen[key] {
			cs.Removals = append(cs.Removals, &Removal{Key: key})
		}
	}

	sort.Slice(cs.Additions, func(i, j int) bool { return cs.Additions[i].Record.Key < cs.Additions[j].Record.Key })
	sort.Slice(cs.Modifications, func(i, j int) bool { return cs.Modifications[i].Key < cs.Modifications[j].Key })
	sort.Slice(cs.Removals, func(i, j int) bool { return cs.Removals[i].Key < cs.Removals[j].Key })

	return cs
}
