// Package report defines the report tree sent to the Overwatch hub.
// A report state is a tree of nodes: scalars, annotated values, ordered maps
// and the watchdog block. The JSON encoding follows the hub protocol, where
// annotated leaves and the watchdog use "__"-prefixed member names.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is a single element of the report tree.
// It is implemented only by Scalar, Value, *Map and Watchdog.
type Node interface {
	json.Marshaler
	node()
}

// Scalar is a raw leaf: null, bool, integer, float or string.
// Construct it with the typed helpers below.
type Scalar struct {
	v any
}

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// String returns a string scalar.
func String(s string) Scalar { return Scalar{v: s} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{v: b} }

// Int returns an integer scalar.
func Int(n int64) Scalar { return Scalar{v: n} }

// Uint returns an unsigned integer scalar.
func Uint(n uint64) Scalar { return Scalar{v: n} }

// Float returns a floating point scalar.
func Float(f float64) Scalar { return Scalar{v: f} }

// IsNull reports whether s is the null scalar.
func (s Scalar) IsNull() bool { return s.v == nil }

// Raw returns the underlying Go value (nil, bool, int64, uint64, float64 or string).
func (s Scalar) Raw() any { return s.v }

func (Scalar) node() {}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.v)
}

// Map is an ordered string-keyed map of nodes. Keys keep insertion order;
// setting an existing key replaces its node in place.
type Map struct {
	keys  []string
	nodes map[string]Node
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{nodes: make(map[string]Node)}
}

func (*Map) node() {}

// Set stores n under key and returns m for chaining.
func (m *Map) Set(key string, n Node) *Map {
	if n == nil {
		n = Null()
	}
	if _, ok := m.nodes[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.nodes[key] = n
	return m
}

// Get returns the node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	n, ok := m.nodes[key]
	return n, ok
}

// Map returns the child map stored under key, or nil.
func (m *Map) Map(key string) *Map {
	n, _ := m.nodes[key].(*Map)
	return n
}

// Value returns the annotated value stored under key.
func (m *Map) Value(key string) (Value, bool) {
	v, ok := m.nodes[key].(Value)
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.nodes[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// MarshalJSON implements json.Marshaler, preserving key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := m.nodes[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
