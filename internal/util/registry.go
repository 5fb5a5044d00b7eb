// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import "sync"

// OrderedRegistry is a thread-safe registry for string-keyed values that
// remembers registration order. Menus built from it list entries in the
// order they were declared, never alphabetically.
type OrderedRegistry[V any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]V
}

// NewOrderedRegistry creates a new empty registry.
func NewOrderedRegistry[V any]() *OrderedRegistry[V] {
	return &OrderedRegistry[V]{items: make(map[string]V)}
}

// Set stores a value by key if the key doesn't exist.
// Returns true if new key was added, false if key already existed (value not updated).
func (r *OrderedRegistry[V]) Set(key string, value V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[key]; exists {
		return false
	}
	r.items[key] = value
	r.order = append(r.order, key)
	return true
}

// MustSet is Set for static tables; a duplicate key is a programming error.
func (r *OrderedRegistry[V]) MustSet(key string, value V) {
	if !r.Set(key, value) {
		panic("duplicate registry key: " + key)
	}
}

// Get retrieves a value by key.
func (r *OrderedRegistry[V]) Get(key string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// Has checks if a key exists.
func (r *OrderedRegistry[V]) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[key]
	return ok
}

// Keys returns all keys in registration order.
func (r *OrderedRegistry[V]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Values returns all values in registration order.
func (r *OrderedRegistry[V]) Values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := make([]V, 0, len(r.order))
	for _, k := range r.order {
		values = append(values, r.items[k])
	}
	return values
}

// Len returns the number of registered entries.
func (r *OrderedRegistry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
