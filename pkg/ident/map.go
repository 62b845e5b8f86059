package ident

// Map is a case-insensitive, insertion-ordered map keyed by
// identifier. It backs every "ordered-map<name, …>" table in the
// Index (spec §3): Types, Pous, Globals, Implementations.
type Map[V any] struct {
	values map[string]V
	// original preserves the first-seen casing of each normalized key,
	// so error messages and dumps can show the symbol as the user
	// wrote it rather than its normalized form.
	original map[string]string
	order    []string // normalized keys, in insertion order
}

// NewMap creates an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V), original: make(map[string]string)}
}

// NewMapWithCapacity creates an empty Map pre-sized for n entries.
func NewMapWithCapacity[V any](n int) *Map[V] {
	return &Map[V]{
		values:   make(map[string]V, n),
		original: make(map[string]string, n),
		order:    make([]string, 0, n),
	}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int { return len(m.order) }

// Set inserts or overwrites the value for name. On overwrite, the
// original casing is updated to the most recent Set call's spelling.
func (m *Map[V]) Set(name string, value V) {
	key := Normalize(name)
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = value
	m.original[key] = name
}

// SetIfAbsent inserts value only if name is not already present.
// Returns true if the insert happened.
func (m *Map[V]) SetIfAbsent(name string, value V) bool {
	key := Normalize(name)
	if _, exists := m.values[key]; exists {
		return false
	}
	m.order = append(m.order, key)
	m.values[key] = value
	m.original[key] = name
	return true
}

// Get looks up a value by identifier, case-insensitively.
func (m *Map[V]) Get(name string) (V, bool) {
	v, ok := m.values[Normalize(name)]
	return v, ok
}

// GetOriginalKey returns the casing the entry was first (or most
// recently overwritten) inserted with.
func (m *Map[V]) GetOriginalKey(name string) string {
	return m.original[Normalize(name)]
}

// Has reports whether name is present, case-insensitively.
func (m *Map[V]) Has(name string) bool {
	_, ok := m.values[Normalize(name)]
	return ok
}

// Delete removes an entry, if present, and reports whether it removed
// one.
func (m *Map[V]) Delete(name string) bool {
	key := Normalize(name)
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	delete(m.original, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes all entries.
func (m *Map[V]) Clear() {
	m.values = make(map[string]V)
	m.original = make(map[string]string)
	m.order = nil
}

// Clone returns a shallow copy: values are shared (e.g. pointer
// values alias the original), but the two maps' entries and order
// are independent afterwards.
func (m *Map[V]) Clone() *Map[V] {
	out := NewMapWithCapacity[V](len(m.order))
	for _, k := range m.order {
		out.order = append(out.order, k)
		out.values[k] = m.values[k]
		out.original[k] = m.original[k]
	}
	return out
}

// Keys returns the original-cased keys in insertion order.
func (m *Map[V]) Keys() []string {
	out := make([]string, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.original[k])
	}
	return out
}

// Values returns values in insertion order.
func (m *Map[V]) Values() []V {
	out := make([]V, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.values[k])
	}
	return out
}

// Range calls fn for each entry in insertion order, stopping early if
// fn returns false.
func (m *Map[V]) Range(fn func(name string, value V) bool) {
	for _, k := range m.order {
		if !fn(m.original[k], m.values[k]) {
			return
		}
	}
}
