package inventory

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/utc"

	"github.com/kardexlabs/kardex/pkg/errors"
)

// Store is the canonical in-memory dataset of a single inventory session.
// It owns the entity collections, the derived serial-number index and
// area item-count aggregate, the per-area completion/closure sets, the
// global session flags and the user-facing activity log.
//
// Index entries are updated before any mutating method returns, so a read
// immediately after a mutation never observes a stale index.
type Store struct {
	mu sync.RWMutex

	items       *Items
	additionals *Additionals
	custodians  *Custodians

	areaNames     map[string]string
	areaDirectory map[string]Responsible

	completedAreas map[string]bool
	closedAreas    map[string]bool

	finished bool
	readOnly bool

	activeCustodianID string

	// Derived, never persisted. Rebuilt on restore.
	serialIndex map[string][]string
	areaCounts  map[string]int

	activityLog  []string
	sessionStart utc.Time
}

// State is the persistable portion of a Store: everything except the
// derived serial index and area counts, which are rebuilt on restore.
type State struct {
	Items           []Item                 `json:"items" yaml:"items"`
	AdditionalItems []AdditionalItem       `json:"additional_items,omitempty" yaml:"additional_items,omitempty"`
	Custodians      []Custodian            `json:"custodians,omitempty" yaml:"custodians,omitempty"`
	AreaNames       map[string]string      `json:"area_names,omitempty" yaml:"area_names,omitempty"`
	AreaDirectory   map[string]Responsible `json:"area_directory,omitempty" yaml:"area_directory,omitempty"`
	CompletedAreas  []string               `json:"completed_areas,omitempty" yaml:"completed_areas,omitempty"`
	ClosedAreas     []string               `json:"closed_areas,omitempty" yaml:"closed_areas,omitempty"`
	Finished        bool                   `json:"finished" yaml:"finished"`
	ReadOnly        bool                   `json:"read_only" yaml:"read_only"`
	ActiveCustodian string                 `json:"active_custodian,omitempty" yaml:"active_custodian,omitempty"`
	ActivityLog     []string               `json:"activity_log,omitempty" yaml:"activity_log,omitempty"`
	SessionStart    utc.Time               `json:"session_start" yaml:"session_start"`
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		items:          NewItems(),
		additionals:    NewAdditionals(),
		custodians:     NewCustodians(),
		areaNames:      make(map[string]string),
		areaDirectory:  make(map[string]Responsible),
		completedAreas: make(map[string]bool),
		closedAreas:    make(map[string]bool),
		serialIndex:    make(map[string][]string),
		areaCounts:     make(map[string]int),
		sessionStart:   utc.Now(),
	}
}

// Items returns the item collection for read access. Mutations must go
// through the Store so the derived indices stay current.
func (s *Store) Items() *Items {
	return s.items
}

// Additionals returns the additional-item collection for read access.
func (s *Store) Additionals() *Additionals {
	return s.additionals
}

// Custodians returns the custodian collection for read access.
func (s *Store) Custodians() *Custodians {
	return s.custodians
}

// Item returns a copy of the item with the given key.
func (s *Store) Item(key string) (Item, error) {
	item, ok := s.items.Get(key)
	if !ok {
		return Item{}, &errors.NotFoundError{Resource: "item", ID: key}
	}
	return *item, nil
}

// AddItems inserts a batch of items, indexing each one. Items whose key
// already exists are reported in the returned map and not inserted.
func (s *Store) AddItems(items []*Item) map[string]error {
	errs := s.items.AddBatch(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, failed := errs[item.Key]; failed {
			continue
		}
		s.indexItemLocked(item)
		if item.OriginArea != "" {
			if _, known := s.areaNames[item.OriginArea]; !known {
				s.areaNames[item.OriginArea] = item.OriginArea
			}
		}
	}
	return errs
}

// SetDescriptive overwrites the comparable descriptive fields of an item,
// keeping its assignment state and origin metadata untouched. The serial
// index is updated before returning.
func (s *Store) SetDescriptive(key, description, brand, model, serial string) error {
	item, ok := s.items.Get(key)
	if !ok {
		return &errors.NotFoundError{Resource: "item", ID: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unindexSerialLocked(item.Serial, key)
	item.Description = description
	item.Brand = brand
	item.Model = model
	item.Serial = serial
	s.indexSerialLocked(item.Serial, key)
	return nil
}

// DeleteItem removes an item and its index entries.
func (s *Store) DeleteItem(key string) error {
	item, ok := s.items.Get(key)
	if !ok {
		return &errors.NotFoundError{Resource: "item", ID: key}
	}

	if err := s.items.Delete(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.unindexItemLocked(item)
	return nil
}

// HasFile reports whether any item originated from the named source file.
func (s *Store) HasFile(fileName string) bool {
	found := false
	s.items.ForEach(func(_ string, item *Item) bool {
		if item.FileName == fileName {
			found = true
			return false
		}
		return true
	})
	return found
}

// RemoveByFileName removes every item imported from the named source file
// and returns the number removed. Used when a file is re-imported as a
// replacement.
func (s *Store) RemoveByFileName(fileName string) int {
	return s.removeWhere(func(item *Item) bool { return item.FileName == fileName })
}

// RemoveBatch removes every item belonging to the given import batch and
// returns the number removed.
func (s *Store) RemoveBatch(batchID string) int {
	return s.removeWhere(func(item *Item) bool { return item.BatchID == batchID })
}

func (s *Store) removeWhere(match func(*Item) bool) int {
	var doomed []*Item
	s.items.ForEach(func(_ string, item *Item) bool {
		if match(item) {
			doomed = append(doomed, item)
		}
		return true
	})

	for _, item := range doomed {
		_ = s.items.Delete(item.Key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range doomed {
		s.unindexItemLocked(item)
	}
	return len(doomed)
}

// SerialLookup returns the keys of all items carrying the given serial
// number, ignoring case and surrounding whitespace.
func (s *Store) SerialLookup(serial string) []string {
	normalized := normalizeSerial(serial)
	if normalized == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.serialIndex[normalized]))
	copy(keys, s.serialIndex[normalized])
	return keys
}

// AreaCount returns the number of items whose origin area is areaID.
func (s *Store) AreaCount(areaID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.areaCounts[areaID]
}

// --- custodians ---

// SetCustodian inserts or updates a custodian.
func (s *Store) SetCustodian(custodian Custodian) error {
	if custodian.ID == "" {
		return errors.NewValidationError("id", custodian.ID, "custodian id is required")
	}
	if custodian.Name == "" {
		return errors.NewValidationError("name", custodian.Name, "custodian name is required")
	}
	c := custodian
	return s.custodians.Set(c.ID, &c)
}

// DeleteCustodian removes a custodian. Items already located under the
// custodian keep their (now dangling) custodian name: deletion does not
// cascade onto assignment state. Area occupancy counts are recomputed.
func (s *Store) DeleteCustodian(id string) error {
	if err := s.custodians.Delete(id); err != nil {
		return &errors.NotFoundError{Resource: "custodian", ID: id}
	}

	s.mu.Lock()
	if s.activeCustodianID == id {
		s.activeCustodianID = ""
	}
	s.mu.Unlock()

	s.RecalculateAreaCounts()
	return nil
}

// ActivateCustodian marks the given custodian as the one performing
// current assignments. Any previously active custodian is deactivated.
func (s *Store) ActivateCustodian(id string) error {
	if !s.custodians.Exists(id) {
		return &errors.NotFoundError{Resource: "custodian", ID: id}
	}

	s.mu.Lock()
	s.activeCustodianID = id
	s.mu.Unlock()
	return nil
}

// DeactivateCustodian clears the active custodian.
func (s *Store) DeactivateCustodian() {
	s.mu.Lock()
	s.activeCustodianID = ""
	s.mu.Unlock()
}

// ActiveCustodian returns the currently active custodian, if any.
func (s *Store) ActiveCustodian() (Custodian, bool) {
	s.mu.RLock()
	id := s.activeCustodianID
	s.mu.RUnlock()

	if id == "" {
		return Custodian{}, false
	}
	custodian, ok := s.custodians.Get(id)
	if !ok {
		return Custodian{}, false
	}
	return *custodian, true
}

// --- areas ---

// EnsureArea records the display name of an area the first time it is seen.
// An existing name is never overwritten.
func (s *Store) EnsureArea(id, name string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.areaNames[id]; !known {
		if name == "" {
			name = id
		}
		s.areaNames[id] = name
	}
}

// SetResponsible records the responsible party of an area the first time
// one is extracted from an imported list.
func (s *Store) SetResponsible(areaID string, responsible Responsible) {
	if areaID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.areaDirectory[areaID]; !known {
		s.areaDirectory[areaID] = responsible
	}
}

// AreaName returns the display name of an area, falling back to its id.
func (s *Store) AreaName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.areaNames[id]; ok {
		return name
	}
	return id
}

// Areas returns all known areas sorted by id.
func (s *Store) Areas() []Area {
	s.mu.RLock()
	defer s.mu.RUnlock()

	areas := make([]Area, 0, len(s.areaNames))
	for id, name := range s.areaNames {
		area := Area{ID: id, Name: name}
		if responsible, ok := s.areaDirectory[id]; ok {
			r := responsible
			area.Responsible = &r
		}
		areas = append(areas, area)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
	return areas
}

// --- completion and closure ---

// IsAreaCompleted reports whether the area is currently in the completed set.
func (s *Store) IsAreaCompleted(areaID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completedAreas[areaID]
}

// MarkAreaCompleted puts the area into the completed set.
func (s *Store) MarkAreaCompleted(areaID string) {
	s.mu.Lock()
	s.completedAreas[areaID] = true
	s.mu.Unlock()
}

// ClearAreaCompleted takes the area out of the completed set.
func (s *Store) ClearAreaCompleted(areaID string) {
	s.mu.Lock()
	delete(s.completedAreas, areaID)
	s.mu.Unlock()
}

// IsAreaClosed reports whether the area has been administratively closed.
func (s *Store) IsAreaClosed(areaID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closedAreas[areaID]
}

// CloseArea administratively finalizes an area. Closure is terminal: a
// closed area is frozen, skipped by completion checks and never re-diffed.
func (s *Store) CloseArea(areaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.areaNames[areaID]; !known {
		return &errors.NotFoundError{Resource: "area", ID: areaID}
	}
	s.closedAreas[areaID] = true
	return nil
}

// CompletedAreas returns the sorted ids of all completed areas.
func (s *Store) CompletedAreas() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.completedAreas)
}

// ClosedAreas returns the sorted ids of all closed areas.
func (s *Store) ClosedAreas() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.closedAreas)
}

// --- session flags ---

// Finished reports whether the global inventory-finished flag is set.
func (s *Store) Finished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finished
}

// SetFinished sets or clears the global inventory-finished flag. The
// custody engine only ever sets it; importing new items clears it.
func (s *Store) SetFinished(finished bool) {
	s.mu.Lock()
	s.finished = finished
	s.mu.Unlock()
}

// ReadOnly reports whether the session is finalized read-only.
func (s *Store) ReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readOnly
}

// SetReadOnly sets the read-only flag. A read-only session rejects
// mutations and turns checkpoints into reported no-ops.
func (s *Store) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	s.readOnly = readOnly
	s.mu.Unlock()
}

// SessionStart returns the time the session was started.
func (s *Store) SessionStart() utc.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionStart
}

// --- activity log ---

// LogActivity appends a timestamped entry to the user-facing activity log.
func (s *Store) LogActivity(action, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activityLog = append(s.activityLog,
		fmt.Sprintf("%s | %s: %s", utc.Now().Format("2006-01-02 15:04:05"), action, detail))
}

// ActivityLog returns a copy of the activity log.
func (s *Store) ActivityLog() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := make([]string, len(s.activityLog))
	copy(log, s.activityLog)
	return log
}

// --- state export / restore ---

// ExportState returns a deep copy of the persistable store state. Derived
// indices are excluded; they are rebuilt by RestoreState.
func (s *Store) ExportState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		AreaNames:       make(map[string]string, len(s.areaNames)),
		AreaDirectory:   make(map[string]Responsible, len(s.areaDirectory)),
		CompletedAreas:  sortedKeys(s.completedAreas),
		ClosedAreas:     sortedKeys(s.closedAreas),
		Finished:        s.finished,
		ReadOnly:        s.readOnly,
		ActiveCustodian: s.activeCustodianID,
		ActivityLog:     make([]string, len(s.activityLog)),
		SessionStart:    s.sessionStart,
	}
	maps.Copy(state.AreaNames, s.areaNames)
	maps.Copy(state.AreaDirectory, s.areaDirectory)
	copy(state.ActivityLog, s.activityLog)

	for _, item := range s.items.List() {
		state.Items = append(state.Items, *item)
	}
	sort.Slice(state.Items, func(i, j int) bool { return state.Items[i].Key < state.Items[j].Key })

	for _, item := range s.additionals.List() {
		state.AdditionalItems = append(state.AdditionalItems, *item)
	}
	sort.Slice(state.AdditionalItems, func(i, j int) bool {
		return state.AdditionalItems[i].ID < state.AdditionalItems[j].ID
	})

	for _, custodian := range s.custodians.List() {
		state.Custodians = append(state.Custodians, *custodian)
	}
	sort.Slice(state.Custodians, func(i, j int) bool {
		return state.Custodians[i].ID < state.Custodians[j].ID
	})

	return state
}

// RestoreState replaces the store's contents wholesale with the given
// state and rebuilds the derived indices.
func (s *Store) RestoreState(state State) {
	s.items.Clear()
	s.additionals.Clear()
	s.custodians.Clear()

	for i := range state.Items {
		item := state.Items[i]
		_ = s.items.Set(item.Key, &item)
	}
	for i := range state.AdditionalItems {
		item := state.AdditionalItems[i]
		_ = s.additionals.Set(item.ID, &item)
	}
	for i := range state.Custodians {
		custodian := state.Custodians[i]
		_ = s.custodians.Set(custodian.ID, &custodian)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.areaNames = make(map[string]string, len(state.AreaNames))
	maps.Copy(s.areaNames, state.AreaNames)
	s.areaDirectory = make(map[string]Responsible, len(state.AreaDirectory))
	maps.Copy(s.areaDirectory, state.AreaDirectory)

	s.completedAreas = make(map[string]bool, len(state.CompletedAreas))
	for _, id := range state.CompletedAreas {
		s.completedAreas[id] = true
	}
	s.closedAreas = make(map[string]bool, len(state.ClosedAreas))
	for _, id := range state.ClosedAreas {
		s.closedAreas[id] = true
	}

	s.finished = state.Finished
	s.readOnly = state.ReadOnly
	s.activeCustodianID = state.ActiveCustodian
	s.activityLog = make([]string, len(state.ActivityLog))
	copy(s.activityLog, state.ActivityLog)
	if !state.SessionStart.IsZero() {
		s.sessionStart = state.SessionStart
	}

	s.rebuildIndexesLocked()
}

// RecalculateAreaCounts rebuilds the area item-count aggregate from scratch.
func (s *Store) RecalculateAreaCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildAreaCountsLocked()
}

// --- index maintenance ---

func (s *Store) rebuildIndexesLocked() {
	s.serialIndex = make(map[string][]string)
	s.areaCounts = make(map[string]int)
	for _, item := range s.items.List() {
		s.indexItemLocked(item)
	}
}

func (s *Store) rebuildAreaCountsLocked() {
	s.areaCounts = make(map[string]int)
	for _, item := range s.items.List() {
		s.areaCounts[item.OriginArea]++
	}
}

func (s *Store) indexItemLocked(item *Item) {
	s.indexSerialLocked(item.Serial, item.Key)
	s.areaCounts[item.OriginArea]++
}

func (s *Store) unindexItemLocked(item *Item) {
	s.unindexSerialLocked(item.Serial, item.Key)
	if s.areaCounts[item.OriginArea] > 0 {
		s.areaCounts[item.OriginArea]--
	}
}

func (s *Store) indexSerialLocked(serial, key string) {
	normalized := normalizeSerial(serial)
	if normalized == "" {
		return
	}
	s.serialIndex[normalized] = append(s.serialIndex[normalized], key)
}

func (s *Store) unindexSerialLocked(serial, key string) {
	normalized := normalizeSerial(serial)
	if normalized == "" {
		return
	}
	keys := s.serialIndex[normalized]
	for i, k := range keys {
		if k == key {
			s.serialIndex[normalized] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	if len(s.serialIndex[normalized]) == 0 {
		delete(s.serialIndex, normalized)
	}
}

func normalizeSerial(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
