package inventory

import (
	"fmt"
	"maps"
	"sync"
)

// Custodians is a concurrent safe map of custodians keyed by identifier.
type Custodians struct {
	mu         sync.RWMutex
	custodians map[string]*Custodian
}

// NewCustodians creates a new empty Custodians collection.
func NewCustodians() *Custodians {
	return &Custodians{
		custodians: make(map[string]*Custodian),
	}
}

// Get returns a custodian by id and whether it exists.
func (c *Custodians) Get(id string) (*Custodian, bool) {
	c.mu.RLock()
	custodian, ok := c.custodians[id]
	c.mu.RUnlock()
	return custodian, ok
}

// GetByName returns the first custodian with the given name.
func (c *Custodians) GetByName(name string) (*Custodian, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, custodian := range c.custodians {
		if custodian.Name == name {
			return custodian, true
		}
	}
	return nil, false
}

// Set sets a custodian by id. Returns an error if custodian is nil.
func (c *Custodians) Set(id string, custodian *Custodian) error {
	if custodian == nil {
		return fmt.Errorf("custodian cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.custodians[id] = custodian
	return nil
}

// Delete removes a custodian by id. Returns an error if it doesn't exist.
func (c *Custodians) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.custodians[id]; !exists {
		return fmt.Errorf("custodian with ID %s not found", id)
	}

	delete(c.custodians, id)
	return nil
}

// Exists checks if a custodian exists without returning it.
func (c *Custodians) Exists(id string) bool {
	c.mu.RLock()
	_, exists := c.custodians[id]
	c.mu.RUnlock()
	return exists
}

// Len returns the number of custodians.
func (c *Custodians) Len() int {
	c.mu.RLock()
	length := len(c.custodians)
	c.mu.RUnlock()
	return length
}

// List returns a slice of all custodians.
func (c *Custodians) List() []*Custodian {
	c.mu.RLock()
	custodians := make([]*Custodian, 0, len(c.custodians))
	for _, custodian := range c.custodians {
		custodians = append(custodians, custodian)
	}
	c.mu.RUnlock()
	return custodians
}

// Map returns a copy of the underlying map.
func (c *Custodians) Map() map[string]*Custodian {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]*Custodian, len(c.custodians))
	maps.Copy(result, c.custodians)
	return result
}

// ForEach applies a function to each custodian. If the function returns
// false, iteration stops early.
func (c *Custodians) ForEach(fn func(id string, custodian *Custodian) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id, custodian := range c.custodians {
		if !fn(id, custodian) {
			break
		}
	}
}

// Clear removes all custodians.
func (c *Custodians) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.custodians {
		delete(c.custodians, k)
	}
}
