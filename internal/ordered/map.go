// Package ordered provides an insertion-ordered map keyed by name.
package ordered

import "iter"

// Map is a string-keyed map that iterates in insertion order.
// Replacing the value of an existing key keeps its position.
// Not thread-safe.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Set stores v under key.
func (m *Map[V]) Set(key string, v V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key.
func (m *Map[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *Map[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// All iterates the entries in order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a copy of m with every value passed through fn.
// A nil fn copies values as is.
func (m *Map[V]) Clone(fn func(V) V) *Map[V] {
	c := &Map[V]{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]V, len(m.values)),
	}
	for k, v := range m.values {
		if fn != nil {
			v = fn(v)
		}
		c.values[k] = v
	}
	return c
}

// Merge sets every entry of other on m, in the order of other.
func (m *Map[V]) Merge(other *Map[V]) {
	for k, v := range other.All() {
		m.Set(k, v)
	}
}
