package blobcache

import (
	"encoding/json"
	"fmt"
	"path"
)

// Typed is a JSON-encoded view over a Store scoped to one namespace directory.
type Typed[T any] struct {
	store     *Store
	namespace string
}

// NewTyped returns a typed cache storing documents under namespace/. A nil
// store yields a cache that always misses and discards writes.
func NewTyped[T any](store *Store, namespace string) *Typed[T] {
	return &Typed[T]{store: store, namespace: namespace}
}

// Enabled reports whether reads and writes reach disk.
func (t *Typed[T]) Enabled() bool {
	return t != nil && t.store != nil
}

// Key joins the namespace and file name into a store key.
func (t *Typed[T]) Key(file string) string {
	if t == nil || t.namespace == "" {
		return file
	}
	return path.Join(t.namespace, file)
}

// Read decodes the document stored under file. Missing and corrupt documents
// are both reported as ok=false.
func (t *Typed[T]) Read(file string) (T, bool) {
	var zero T
	if !t.Enabled() {
		return zero, false
	}
	data, ok := t.store.ReadBytes(t.Key(file))
	if !ok || isNullDocument(data) {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, false
	}
	return value, true
}

// Write encodes value and stores it under file.
func (t *Typed[T]) Write(file string, value T) error {
	if !t.Enabled() {
		return nil
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache document: %w", err)
	}
	return t.store.WriteBytes(t.Key(file), data)
}
