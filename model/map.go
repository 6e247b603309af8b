package model

import (
	"fmt"
	"iter"
)

// Map is an ordered mapping with unique keys. Iteration follows insertion
// order; setting an existing key keeps its position.
type Map struct {
	entity Entity
	keys   []string
	values map[string]Value
}

// NewMap creates a Map that only accepts keys from entity's vocabulary.
func NewMap(entity Entity) *Map {
	return &Map{
		entity: entity,
		keys:   make([]string, 0),
		values: make(map[string]Value),
	}
}

func (m *Map) Entity() Entity { return m.entity }

// Set stores value under key. It panics when key is not part of the
// Map's vocabulary.
func (m *Map) Set(key string, value Value) *Map {
	if !m.entity.accepts(key) {
		panic(fmt.Sprintf("model: key %q is not part of the %s vocabulary", key, m.entity))
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

func (m *Map) SetString(key, value string) *Map {
	return m.Set(key, String(value))
}

func (m *Map) SetMap(key string, value *Map) *Map {
	return m.Set(key, Mapping(value))
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Lookup returns the value under key or the zero Value.
func (m *Map) Lookup(key string) Value {
	v, _ := m.Get(key)
	return v
}

// GetString returns the string form of the scalar under key.
func (m *Map) GetString(key string) string {
	return m.Lookup(key).String()
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map) Delete(key string) {
	if !m.Has(key) {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return
		}
	}
}

// Keys returns all keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Equal reports whether m and other hold equal values under the same keys
// in the same order.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !m.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := NewMap(m.entity)
	for k, v := range m.All() {
		c.Set(k, v.clone())
	}
	return c
}

func (v Value) clone() Value {
	switch v.kind {
	case KindSequence:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.clone()
		}
		return Sequence(items...)
	case KindMapping:
		return Mapping(v.m.Clone())
	}
	return v
}

// Any converts m into a map[string]any tree.
func (m *Map) Any() map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m.keys))
	for k, v := range m.All() {
		result[k] = v.Any()
	}
	return result
}
