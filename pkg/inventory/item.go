// Package inventory provides the canonical in-memory store for the kardex
// system: catalogued items, custodian-declared additional items, custodians,
// area metadata and the derived indices kept over them.
//
// The store performs no I/O. It is mutated synchronously by the custody and
// reconciliation engines and serialized wholesale by the snapshot layer.
// Callers are expected to follow mutating operations with a persistence
// checkpoint; the store itself never triggers one, so bulk operations can
// batch their writes.
package inventory

import (
	"github.com/agentstation/utc"
)

// Item is a catalogued inventory unit. The Key is assigned at import and
// never changes afterwards; origin metadata is likewise immutable once the
// item exists. Descriptive fields may be overwritten by reconciliation
// merges, assignment fields by the custody engine.
type Item struct {
	Key         string `json:"key" yaml:"key"`
	Description string `json:"description" yaml:"description"`
	Brand       string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model       string `json:"model,omitempty" yaml:"model,omitempty"`
	Serial      string `json:"serial,omitempty" yaml:"serial,omitempty"`

	// Origin metadata, set at creation.
	OriginArea string `json:"origin_area" yaml:"origin_area"`
	BookType   string `json:"book_type,omitempty" yaml:"book_type,omitempty"`
	FileName   string `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	BatchID    string `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	PrintDate  string `json:"print_date,omitempty" yaml:"print_date,omitempty"`

	// Assignment state.
	Custodian        string    `json:"custodian,omitempty" yaml:"custodian,omitempty"`
	Located          bool      `json:"located" yaml:"located"`
	RelabelRequested bool      `json:"relabel_requested" yaml:"relabel_requested"`
	PreciseLocation  string    `json:"precise_location,omitempty" yaml:"precise_location,omitempty"`
	AssignedAt       *utc.Time `json:"assigned_at,omitempty" yaml:"assigned_at,omitempty"`
	AreaMismatch     bool      `json:"area_mismatch" yaml:"area_mismatch"`
}

// AdditionalItem is a non-catalogued asset declared ad hoc by a custodian.
type AdditionalItem struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Brand       string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	Serial      string   `json:"serial,omitempty" yaml:"serial,omitempty"`
	OriginalKey string   `json:"original_key,omitempty" yaml:"original_key,omitempty"`
	OriginArea  string   `json:"origin_area,omitempty" yaml:"origin_area,omitempty"`
	Custodian   string   `json:"custodian" yaml:"custodian"`
	Personal    bool     `json:"personal" yaml:"personal"`
	AssignedKey string   `json:"assigned_key,omitempty" yaml:"assigned_key,omitempty"`
	CreatedAt   utc.Time `json:"created_at" yaml:"created_at"`
}

// Custodian is a person responsible for items and locations in an area.
// At most one custodian is active at a time; the active custodian is the
// one receiving new assignments.
type Custodian struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Area      string   `json:"area" yaml:"area"`
	Locations []string `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// PrimaryLocation returns the custodian's first registered location, or an
// empty string when none is registered.
func (c Custodian) PrimaryLocation() string {
	if len(c.Locations) == 0 {
		return ""
	}
	return c.Locations[0]
}

// Responsible is the responsible-party record of an area as extracted from
// the signature block of its imported list.
type Responsible struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
}

// Area is an organizational subdivision discovered implicitly from imported
// items and custodians.
type Area struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Responsible *Responsible `json:"responsible,omitempty" yaml:"responsible,omitempty"`
}
