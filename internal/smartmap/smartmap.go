// Package smartmap implements the "smart dictionary" collaborator from
// spec.md §6: a map that, in addition to normal key->value lookup, lets
// callers recover the original key object stored under a given key's
// equality class. The Type Table keeps its type and constructor
// registries in it; the Symbol Table uses a plain map per scope.
package smartmap

// Map is a smart dictionary keyed by K (comparable) holding values V.
// It is not safe for concurrent use; callers own synchronization, same as
// the rest of this single-threaded analysis core.
type Map[K comparable, V any] struct {
	keys   map[K]K
	values map[K]V
	order  []K // insertion order, for deterministic iteration
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys:   make(map[K]K),
		values: make(map[K]V),
	}
}

// Get returns the value stored for k and whether it was present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// OriginalKey returns the key object first inserted under k's equality
// class, or the zero value and false if k was never inserted.
func (m *Map[K, V]) OriginalKey(k K) (K, bool) {
	orig, ok := m.keys[k]
	return orig, ok
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.values[k]
	return ok
}

// Set inserts or overwrites the value for k. It only records k as the
// "original key" the first time it is inserted; OriginalKey afterwards
// keeps returning that first key object even if Set is called again.
func (m *Map[K, V]) Set(k K, v V) {
	if _, exists := m.values[k]; !exists {
		m.keys[k] = k
		m.order = append(m.order, k)
	}
	m.values[k] = v
}

// Keys returns keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.order))
	copy(out, m.order)
	return out
}

// Len reports the number of entries.
func (m *Map[K, V]) Len() int { return len(m.order) }
