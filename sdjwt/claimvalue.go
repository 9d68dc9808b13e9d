package sdjwt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the cases of Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a tagged variant over a JSON value: null, boolean, number,
// string, ordered array, or ordered object. Numbers are kept as their
// original lexical token (never renormalized) so that re-serializing a
// parsed claim tree reproduces byte-identical digests. Objects preserve
// the insertion order of their source, which the disclosure canonical
// form requires (see OrderedMap).
type Value struct {
	Kind   Kind
	Bool   bool
	Number string // exact lexical form, e.g. "1", "1.50", "-3e10"
	String string
	Array  []Value
	Object *OrderedMap
}

func Null() Value                 { return Value{Kind: KindNull} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func StringValue(s string) Value  { return Value{Kind: KindString, String: s} }
func NumberValue(lit string) Value { return Value{Kind: KindNumber, Number: lit} }
func ArrayValue(items []Value) Value {
	return Value{Kind: KindArray, Array: items}
}
func ObjectValue(m *OrderedMap) Value { return Value{Kind: KindObject, Object: m} }

// OrderedMap is a string-keyed map that remembers insertion order. Unlike
// map[string]interface{}, iterating it always yields the same key order the
// entries were set in, which is required to keep disclosure canonical JSON
// stable across encode/decode round-trips.
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]Value)}
}

// Set inserts or updates key. Updating an existing key keeps its original
// position; inserting a new key appends it.
func (m *OrderedMap) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key if present.
func (m *OrderedMap) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (m *OrderedMap) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Clone returns a deep copy of m.
func (m *OrderedMap) Clone() *OrderedMap {
	out := NewOrderedMap()
	for _, k := range m.keys {
		out.Set(k, m.values[k].Clone())
	}
	return out
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		items := make([]Value, len(v.Array))
		for i, item := range v.Array {
			items[i] = item.Clone()
		}
		return ArrayValue(items)
	case KindObject:
		if v.Object == nil {
			return ObjectValue(nil)
		}
		return ObjectValue(v.Object.Clone())
	default:
		return v
	}
}

// ParseValue decodes JSON bytes into a Value, preserving key order and the
// exact lexical form of numbers. Object key order is recovered by walking
// the decoder's token stream directly rather than decoding into
// map[string]interface{}, which loses it.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("parse claim value: %w", err)
	}
	if dec.More() {
		return Value{}, fmt.Errorf("parse claim value: trailing data")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeValueFromToken(dec, tok)
}

func decodeValueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t.String()), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return ArrayValue(items), nil
		case '{':
			m := NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string")
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return ObjectValue(m), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// AsObject returns v.Object if v is an object, otherwise nil, false.
func (v Value) AsObject() (*OrderedMap, bool) {
	if v.Kind != KindObject {
		return nil, false
	}
	return v.Object, true
}

// AsArray returns v.Array if v is an array, otherwise nil, false.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.Array, true
}

// AsString returns v.String if v is a string, otherwise "", false.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.String, true
}

// FromInterface converts a conventional Go value (as produced by
// encoding/json without UseNumber, or hand-built map[string]interface{}
// trees) into a Value. Numbers arriving as float64 are formatted with
// strconv's shortest round-trip representation; callers that need exact
// lexical preservation of numeric literals should build the Value tree
// directly or go through ParseValue instead.
func FromInterface(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Number:
		return NumberValue(t.String()), nil
	case float64:
		b, err := json.Marshal(t)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(string(b)), nil
	case int:
		return NumberValue(fmt.Sprintf("%d", t)), nil
	case int64:
		return NumberValue(fmt.Sprintf("%d", t)), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			cv, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = cv
		}
		return ArrayValue(items), nil
	case []Value:
		return ArrayValue(t), nil
	case map[string]interface{}:
		m := NewOrderedMap()
		for _, k := range sortedKeys(t) {
			cv, err := FromInterface(t[k])
			if err != nil {
				return Value{}, err
			}
			m.Set(k, cv)
		}
		return ObjectValue(m), nil
	case *OrderedMap:
		return ObjectValue(t), nil
	case Value:
		return t, nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Value{}, fmt.Errorf("unsupported claim value type %T: %w", v, err)
		}
		return ParseValue(b)
	}
}

// sortedKeys is used only for the FromInterface(map[string]interface{})
// fallback, where Go's map has no inherent order to preserve; callers that
// care about order should build an *OrderedMap directly or go through
// ParseValue on real JSON bytes.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// ToInterface converts v back into conventional Go values
// (map[string]interface{}, []interface{}, json.Number, ...) for callers
// that want to work with encoding/json directly.
func (v Value) ToInterface() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return json.Number(v.Number)
	case KindString:
		return v.String
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.ToInterface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, v.Object.Len())
		for _, k := range v.Object.Keys() {
			val, _ := v.Object.Get(k)
			out[k] = val.ToInterface()
		}
		return out
	}
	return nil
}
