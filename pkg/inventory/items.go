package inventory

import (
	"fmt"
	"maps"
	"sync"
)

// Items is a concurrent safe map of catalogued items keyed by unique key.
type Items struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewItems creates a new empty Items collection.
func NewItems() *Items {
	return &Items{
		items: make(map[string]*Item),
	}
}

// Get returns an item by key and whether it exists.
func (i *Items) Get(key string) (*Item, bool) {
	i.mu.RLock()
	item, ok := i.items[key]
	i.mu.RUnlock()
	return item, ok
}

// Set sets an item by key. Returns an error if item is nil.
func (i *Items) Set(key string, item *Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.items[key] = item
	return nil
}

// Add adds an item, returning an error if its key already exists.
func (i *Items) Add(item *Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.items[item.Key]; exists {
		return fmt.Errorf("item with key %s already exists", item.Key)
	}

	i.items[item.Key] = item
	return nil
}

// Delete removes an item by key. Returns an error if the item doesn't exist.
func (i *Items) Delete(key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.items[key]; !exists {
		return fmt.Errorf("item with key %s not found", key)
	}

	delete(i.items, key)
	return nil
}

// Exists checks if an item exists without returning it.
func (i *Items) Exists(key string) bool {
	i.mu.RLock()
	_, exists := i.items[key]
	i.mu.RUnlock()
	return exists
}

// Len returns the number of items.
func (i *Items) Len() int {
	i.mu.RLock()
	length := len(i.items)
	i.mu.RUnlock()
	return length
}

// List returns a slice of all items.
func (i *Items) List() []*Item {
	i.mu.RLock()
	items := make([]*Item, 0, len(i.items))
	for _, item := range i.items {
		items = append(items, item)
	}
	i.mu.RUnlock()
	return items
}

// Map returns a copy of the underlying map.
func (i *Items) Map() map[string]*Item {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := make(map[string]*Item, len(i.items))
	maps.Copy(result, i.items)
	return result
}

// ForEach applies a function to each item. The function should not modify
// the item. If the function returns false, iteration stops early.
func (i *Items) ForEach(fn func(key string, item *Item) bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for key, item := range i.items {
		if !fn(key, item) {
			break
		}
	}
}

// Clear removes all items.
func (i *Items) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k := range i.items {
		delete(i.items, k)
	}
}

// AddBatch adds multiple items in a single operation, skipping nil entries.
// Returns a map of item keys to errors for any failed additions. A key
// duplicated within the batch is rejected outright; none of its entries
// are inserted.
func (i *Items) AddBatch(items []*Item) map[string]error {
	if len(items) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	errs := make(map[string]error)
	staged := make(map[string]bool, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := i.items[item.Key]; exists {
			errs[item.Key] = fmt.Errorf("item with key %s already exists", item.Key)
			continue
		}
		if staged[item.Key] {
			errs[item.Key] = fmt.Errorf("item with key %s duplicated in batch", item.Key)
			continue
		}
		staged[item.Key] = true
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		if _, hasError := errs[item.Key]; !hasError {
			i.items[item.Key] = item
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
