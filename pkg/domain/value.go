package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Member is one key/value entry of a mapping.
type Member struct {
	Key   string
	Value Value
}

// Value is a schema-less document value decoded from a provenance record.
// The zero Value is null. Mappings keep their members in document order.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	s       string
	items   []Value
	members []Member
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a number.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence builds a sequence from items.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

// Mapping builds a mapping from members. Later duplicates replace earlier ones
// in place so the first occurrence keeps its position.
func Mapping(members ...Member) Value {
	v := Value{kind: KindMapping, members: make([]Member, 0, len(members))}
	for _, m := range members {
		v = v.With(m.Key, m.Value)
	}
	return v
}

// M is shorthand for a Member.
func M(key string, value Value) Member { return Member{Key: key, Value: value} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload and whether v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload and whether v is a number.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload and whether v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Items returns the elements of a sequence, or nil.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Members returns the entries of a mapping in order, or nil.
func (v Value) Members() []Member {
	if v.kind != KindMapping {
		return nil
	}
	return v.members
}

// Len reports the number of items or members; scalars have length 0.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.members)
	}
	return 0
}

// Get looks up key in a mapping.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Lookup follows a path of mapping keys.
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// With returns a copy of the mapping with key set to value. An existing key
// keeps its position; a new key is appended. Non-mappings become mappings.
func (v Value) With(key string, value Value) Value {
	members := make([]Member, 0, len(v.Members())+1)
	replaced := false
	for _, m := range v.Members() {
		if m.Key == key {
			m.Value = value
			replaced = true
		}
		members = append(members, m)
	}
	if !replaced {
		members = append(members, Member{Key: key, Value: value})
	}
	return Value{kind: KindMapping, members: members}
}

// Append returns a copy of the sequence with item added at the end.
func (v Value) Append(item Value) Value {
	items := make([]Value, 0, len(v.Items())+1)
	items = append(items, v.Items()...)
	items = append(items, item)
	return Value{kind: KindSequence, items: items}
}

// Equal reports deep equality. Mapping member order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindSequence:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v into plain Go values (map[string]any, []any, string,
// float64, bool, nil). Mapping order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// Scalar renders a scalar as text. Containers render as JSON.
func (v Value) Scalar() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func (v Value) String() string { return v.Scalar() }

// MarshalJSON writes mappings with their members in document order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindMapping:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindNumber:
		if math.IsInf(v.n, 0) || math.IsNaN(v.n) {
			// JSON has no infinities; keep the YAML spelling as a string
			buf.WriteString(strconv.Quote(formatNumber(v.n)))
			return nil
		}
	}
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Errorf("marshal %s value: %w", v.kind, err)
	}
	buf.Write(data)
	return nil
}

// FromInterface converts plain Go values into a Value. Maps are visited in
// iteration order, so callers needing a stable order should build mappings
// with Mapping directly.
func FromInterface(in any) (Value, error) {
	switch x := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case float64:
		return Number(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = String(s)
		}
		return Sequence(items...), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			conv, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = conv
		}
		return Sequence(items...), nil
	case map[string]any:
		members := make([]Member, 0, len(x))
		for k, item := range x {
			conv, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: k, Value: conv})
		}
		return Value{kind: KindMapping, members: members}, nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", in)
}

// formatNumber renders n the way YAML spells it, including .inf and .nan.
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return ".inf"
	case math.IsInf(n, -1):
		return "-.inf"
	case math.IsNaN(n):
		return ".nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
