package inventory

import (
	"fmt"
	"sync"
)

// Additionals is a concurrent safe map of additional (non-catalogued) items
// keyed by generated identifier.
type Additionals struct {
	mu    sync.RWMutex
	items map[string]*AdditionalItem
}

// NewAdditionals creates a new empty Additionals collection.
func NewAdditionals() *Additionals {
	return &Additionals{
		items: make(map[string]*AdditionalItem),
	}
}

// Get returns an additional item by id and whether it exists.
func (a *Additionals) Get(id string) (*AdditionalItem, bool) {
	a.mu.RLock()
	item, ok := a.items[id]
	a.mu.RUnlock()
	return item, ok
}

// Set sets an additional item by id. Returns an error if item is nil.
func (a *Additionals) Set(id string, item *AdditionalItem) error {
	if item == nil {
		return fmt.Errorf("additional item cannot be nil")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[id] = item
	return nil
}

// Delete removes an additional item by id.
func (a *Additionals) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.items[id]; !exists {
		return fmt.Errorf("additional item with ID %s not found", id)
	}

	delete(a.items, id)
	return nil
}

// Len returns the number of additional items.
func (a *Additionals) Len() int {
	a.mu.RLock()
	length := len(a.items)
	a.mu.RUnlock()
	return length
}

// List returns a slice of all additional items.
func (a *Additionals) List() []*AdditionalItem {
	a.mu.RLock()
	items := make([]*AdditionalItem, 0, len(a.items))
	for _, item := range a.items {
		items = append(items, item)
	}
	a.mu.RUnlock()
	return items
}

// ByCustodian returns all additional items declared by the named custodian.
func (a *Additionals) ByCustodian(name string) []*AdditionalItem {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var items []*AdditionalItem
	for _, item := range a.items {
		if item.Custodian == name {
			items = append(items, item)
		}
	}
	return items
}

// Clear removes all additional items.
func (a *Additionals) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k := range a.items {
		delete(a.items, k)
	}
}
