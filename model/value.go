// Package model holds the generator-facing description of a Java type: a
// tree of ordered mappings, sequences and scalars keyed by a fixed
// vocabulary.
package model

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Value is a scalar, an ordered sequence of values or a nested Map. The
// zero Value is a nil scalar.
type Value struct {
	kind   Kind
	scalar any
	items  []Value
	m      *Map
}

// Scalar wraps a string, bool, int64, float64 or nil.
func Scalar(v any) Value {
	switch x := v.(type) {
	case int:
		v = int64(x)
	case int32:
		v = int64(x)
	case float32:
		v = float64(x)
	}
	return Value{kind: KindScalar, scalar: v}
}

func String(s string) Value { return Scalar(s) }

func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

// Maps builds a sequence of nested mappings.
func Maps(maps ...*Map) Value {
	items := make([]Value, len(maps))
	for i, m := range maps {
		items[i] = Mapping(m)
	}
	return Sequence(items...)
}

// Strings builds a sequence of string scalars.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Sequence(items...)
}

func Mapping(m *Map) Value {
	return Value{kind: KindMapping, m: m}
}

func (v Value) Kind() Kind { return v.kind }

// Interface returns the raw scalar, or nil for sequences and mappings.
func (v Value) Interface() any {
	if v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

// String renders scalars the way a template would print them. Sequences
// and mappings render as the empty string.
func (v Value) String() string {
	if v.kind != KindScalar {
		return ""
	}
	switch x := v.scalar.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

func (v Value) Map() *Map {
	if v.kind != KindMapping {
		return nil
	}
	return v.m
}

// Maps returns the mappings held by a sequence, skipping other items.
func (v Value) Maps() []*Map {
	var result []*Map
	for _, item := range v.Items() {
		if m := item.Map(); m != nil {
			result = append(result, m)
		}
	}
	return result
}

// Equal reports whether v and other have the same shape and contents,
// including key order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == other.scalar
	case KindSequence:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(other.m)
	}
	return false
}

// Any converts v into plain Go values: map[string]any, []any and scalars.
// Key order is lost.
func (v Value) Any() any {
	switch v.kind {
	case KindSequence:
		result := make([]any, len(v.items))
		for i, item := range v.items {
			result[i] = item.Any()
		}
		return result
	case KindMapping:
		return v.m.Any()
	}
	return v.scalar
}
