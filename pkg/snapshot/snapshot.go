// Package snapshot persists the session state as a single YAML document.
// Writes are atomic (temp file plus rename) so a crash mid-save never
// leaves a truncated snapshot behind.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
)

// FileName is the snapshot file name inside the data directory, and the
// manifest entry name inside backup archives.
const FileName = "session.yaml"

// Document is the on-disk snapshot layout: the persistable store state
// plus the save timestamp. Derived indices are not part of it.
type Document struct {
	SavedAt utc.Time        `json:"saved_at" yaml:"saved_at"`
	State   inventory.State `json:"state" yaml:"state"`
}

// Ack reports the outcome of a checkpoint request. A checkpoint that is
// legitimately suppressed (read-only session, bulk operation in flight)
// acknowledges without writing and names the reason.
type Ack struct {
	Written bool
	Reason  string
	SavedAt utc.Time
}

// Encode serializes a document to YAML.
func Encode(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.WrapParse("yaml", FileName, err)
	}
	return data, nil
}

// Decode parses a YAML snapshot document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.WrapParse("yaml", FileName, err)
	}
	return doc, nil
}

// Save writes the store state to path atomically.
func Save(path string, store *inventory.Store) (Document, error) {
	doc := Document{
		SavedAt: utc.Now(),
		State:   store.ExportState(),
	}

	data, err := Encode(doc)
	if err != nil {
		return Document{}, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Document{}, errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return Document{}, errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Document{}, errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Document{}, errors.WrapIO("close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Document{}, errors.WrapIO("write", path, err)
	}
	return doc, nil
}

// Load reads a snapshot from path and restores it into the store,
// rebuilding the derived indices. A missing file is reported as not found.
func Load(path string, store *inventory.Store) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, &errors.NotFoundError{Resource: "snapshot", ID: path}
		}
		return Document{}, errors.WrapIO("read", path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return Document{}, err
	}

	store.RestoreState(doc.State)
	return doc, nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes the snapshot at path if present.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", path, err)
	}
	return nil
}

// String implements fmt.Stringer for log output.
func (a Ack) String() string {
	if a.Written {
		return fmt.Sprintf("checkpoint written at %s", a.SavedAt)
	}
	return fmt.Sprintf("checkpoint suppressed: %s", a.Reason)
}
