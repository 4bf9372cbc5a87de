// Package custody implements the assignment state machine: locating items
// under custodians, reversing assignments, relabel requests, ad hoc
// additional items, and the per-area and global completion checks that
// follow every assignment change.
package custody

import (
	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
)

// Engine drives assignment state over a store. It is not safe for
// concurrent use by multiple goroutines; callers serialize access the same
// way they serialize store mutations.
type Engine struct {
	store  *inventory.Store
	logger *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the default logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine over the given store.
func NewEngine(store *inventory.Store, opts ...Option) *Engine {
	engine := &Engine{
		store:  store,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Conflict is an item that could not be assigned because another custodian
// already holds it. Resolving it requires an explicit Reassign.
type Conflict struct {
	Key              string
	CurrentCustodian string
}

// AssignResult summarizes a batch assignment. Closed lists keys that exist
// but sit in a closed area, so callers can tell them apart from unknown
// keys in Missing.
type AssignResult struct {
	Assigned  []string
	Conflicts []Conflict
	Missing   []string
	Closed    []string
}

// Assign locates the given items under the active custodian at the given
// precise location (the custodian's primary location when empty).
//
// Items already held by a different custodian are reported as conflicts and
// left untouched; re-locating an item under its current custodian silently
// refreshes its assignment. Items in closed areas are rejected and reported
// under Closed.
func (e *Engine) Assign(keys []string, preciseLocation string) (AssignResult, error) {
	if e.store.ReadOnly() {
		return AssignResult{}, errors.ErrReadOnly
	}
	active, ok := e.store.ActiveCustodian()
	if !ok {
		return AssignResult{}, errors.ErrActiveCustodianRequired
	}

	location := preciseLocation
	if location == "" {
		location = active.PrimaryLocation()
	}

	var result AssignResult
	touched := make(map[string]bool)

	for _, key := range keys {
		item, found := e.store.Items().Get(key)
		if !found {
			result.Missing = append(result.Missing, key)
			continue
		}
		if e.store.IsAreaClosed(item.OriginArea) {
			result.Closed = append(result.Closed, key)
			continue
		}
		if item.Located && item.Custodian != active.Name {
			result.Conflicts = append(result.Conflicts, Conflict{
				Key:              key,
				CurrentCustodian: item.Custodian,
			})
			continue
		}

		e.stamp(item, active, location)
		result.Assigned = append(result.Assigned, key)
		touched[item.OriginArea] = true
	}

	for area := range touched {
		e.CheckAreaCompletion(area)
	}
	if len(result.Assigned) > 0 {
		e.CheckGlobalCompletion()
		e.store.LogActivity("assign", active.Name)
	}
	return result, nil
}

// Reassign moves a single item to the active custodian. When another
// custodian currently holds the item and confirm is false, a
// ConfirmationRequiredError describing the conflict is returned and nothing
// changes. Reassigning to the item's current custodian just refreshes the
// assignment.
func (e *Engine) Reassign(key string, preciseLocation string, confirm bool) error {
	if e.store.ReadOnly() {
		return errors.ErrReadOnly
	}
	active, ok := e.store.ActiveCustodian()
	if !ok {
		return errors.ErrActiveCustodianRequired
	}

	item, found := e.store.Items().Get(key)
	if !found {
		return &errors.NotFoundError{Resource: "item", ID: key}
	}
	if e.store.IsAreaClosed(item.OriginArea) {
		return errors.ErrAreaClosed
	}
	if item.Located && item.Custodian != active.Name && !confirm {
		return &errors.ConfirmationRequiredError{
			ItemKey:          key,
			CurrentCustodian: item.Custodian,
			NewCustodian:     active.Name,
		}
	}

	location := preciseLocation
	if location == "" {
		location = active.PrimaryLocation()
	}
	e.stamp(item, active, location)

	e.CheckAreaCompletion(item.OriginArea)
	e.CheckGlobalCompletion()
	e.store.LogActivity("reassign", key+" -> "+active.Name)
	return nil
}

// stamp writes the assignment fields of a located item.
func (e *Engine) stamp(item *inventory.Item, custodian inventory.Custodian, location string) {
	now := utc.Now()
	item.Custodian = custodian.Name
	item.Located = true
	item.PreciseLocation = location
	item.AssignedAt = &now
	item.AreaMismatch = item.OriginArea != custodian.Area
	item.RelabelRequested = false
}

// Unassign reverses an item's assignment, returning it to the unlocated
// pool. The item's origin area loses its completed status if it had one.
func (e *Engine) Unassign(key string) error {
	if e.store.ReadOnly() {
		return errors.ErrReadOnly
	}

	item, found := e.store.Items().Get(key)
	if !found {
		return &errors.NotFoundError{Resource: "item", ID: key}
	}
	if !item.Located {
		return errors.NewValidationError("key", key, "item is not located")
	}
	if e.store.IsAreaClosed(item.OriginArea) {
		return errors.ErrAreaClosed
	}

	item.Custodian = ""
	item.Located = false
	item.PreciseLocation = ""
	item.AssignedAt = nil
	item.AreaMismatch = false
	item.RelabelRequested = false

	e.CheckAreaCompletion(item.OriginArea)
	e.store.LogActivity("unassign", key)
	return nil
}

// SetRelabel flags or clears a relabel request on an item. Only located
// items carry the flag; it is cleared automatically when the assignment is
// reversed or refreshed.
func (e *Engine) SetRelabel(key string, requested bool) error {
	if e.store.ReadOnly() {
		return errors.ErrReadOnly
	}

	item, found := e.store.Items().Get(key)
	if !found {
		return &errors.NotFoundError{Resource: "item", ID: key}
	}
	if !item.Located {
		return errors.NewValidationError("key", key, "relabel requires a located item")
	}

	item.RelabelRequested = requested
	return nil
}

// DeclareAdditional records a non-catalogued asset found in the field,
// attributed to the active custodian.
func (e *Engine) DeclareAdditional(description, brand, model, serial string, personal bool) (inventory.AdditionalItem, error) {
	if e.store.ReadOnly() {
		return inventory.AdditionalItem{}, errors.ErrReadOnly
	}
	active, ok := e.store.ActiveCustodian()
	if !ok {
		return inventory.AdditionalItem{}, errors.ErrActiveCustodianRequired
	}
	if description == "" {
		return inventory.AdditionalItem{}, errors.NewValidationError("description", description, "description is required")
	}

	additional := inventory.AdditionalItem{
		ID:          uuid.NewString(),
		Description: description,
		Brand:       brand,
		Model:       model,
		Serial:      serial,
		OriginArea:  active.Area,
		Custodian:   active.Name,
		Personal:    personal,
		CreatedAt:   utc.Now(),
	}
	if err := e.store.Additionals().Set(additional.ID, &additional); err != nil {
		return inventory.AdditionalItem{}, err
	}

	e.store.LogActivity("additional", description)
	return additional, nil
}

// LinkAdditional associates an additional item with a catalogued key, for
// the case where the asset turns out to be on the books after all.
func (e *Engine) LinkAdditional(id, key string) error {
	if e.store.ReadOnly() {
		return errors.ErrReadOnly
	}

	additional, found := e.store.Additionals().Get(id)
	if !found {
		return &errors.NotFoundError{Resource: "additional item", ID: id}
	}
	if !e.store.Items().Exists(key) {
		return &errors.NotFoundError{Resource: "item", ID: key}
	}

	additional.AssignedKey = key
	return nil
}

// RemoveAdditional deletes an additional item.
func (e *Engine) RemoveAdditional(id string) error {
	if e.store.ReadOnly() {
		return errors.ErrReadOnly
	}
	if err := e.store.Additionals().Delete(id); err != nil {
		return &errors.NotFoundError{Resource: "additional item", ID: id}
	}
	return nil
}

// CheckAreaCompletion recomputes the completed status of one area: an area
// with at least one item, all of them located, is completed; anything else
// is not. Closed areas are frozen and skipped. Returns the resulting
// completed status.
func (e *Engine) CheckAreaCompletion(areaID string) bool {
	if e.store.IsAreaClosed(areaID) {
		return e.store.IsAreaCompleted(areaID)
	}

	total := 0
	located := 0
	e.store.Items().ForEach(func(_ string, item *inventory.Item) bool {
		if item.OriginArea == areaID {
			total++
			if item.Located {
				located++
			}
		}
		return true
	})

	completed := total > 0 && located == total
	if completed && !e.store.IsAreaCompleted(areaID) {
		e.store.MarkAreaCompleted(areaID)
		e.logger.Info().Str("area", areaID).Int("items", total).Msg("area completed")
	} else if !completed && e.store.IsAreaCompleted(areaID) {
		e.store.ClearAreaCompleted(areaID)
	}
	return completed
}

// CheckGlobalCompletion sets the finished flag when every item in the
// store is located. The flag is sticky: once set it is never cleared here,
// only by importing new items. An empty store never finishes.
func (e *Engine) CheckGlobalCompletion() bool {
	if e.store.Finished() {
		return true
	}
	if e.store.Items().Len() == 0 {
		return false
	}

	allLocated := true
	e.store.Items().ForEach(func(_ string, item *inventory.Item) bool {
		if !item.Located {
			allLocated = false
			return false
		}
		return true
	})

	if allLocated {
		e.store.SetFinished(true)
		e.store.LogActivity("finished", "all items located")
		e.logger.Info().Int("items", e.store.Items().Len()).Msg("inventory finished")
	}
	return allLocated
}
