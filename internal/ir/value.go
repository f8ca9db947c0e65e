package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// IRValue is a sealed interface over the values an action argument or a state
// snapshot may contain. Only IRNull, IRString, IRInt, IRBool, IRArray and
// IRObject implement it. There is no float type.
type IRValue interface {
	irValue()
}

// IRNull is an explicit JSON null. It is accepted when decoding journal rows
// but rejected by MarshalCanonical.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString is a string value.
type IRString string

func (IRString) irValue() {}

// IRInt is an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool is a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray is an ordered list of values. Action arguments travel as an IRArray
// whose length is fixed per action name.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps string keys to values. Iterate with SortedKeys for a
// deterministic order.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// Args builds an IRArray from its elements.
func Args(vals ...IRValue) IRArray {
	if vals == nil {
		return IRArray{}
	}
	return IRArray(vals)
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units), which differs
// from Go's byte-wise string order outside the BMP.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// StringAt returns the string at position i.
func (arr IRArray) StringAt(i int) (string, error) {
	v, err := arr.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(IRString)
	if !ok {
		return "", fmt.Errorf("argument %d: expected string, got %s", i, KindOf(v))
	}
	return string(s), nil
}

// IntAt returns the integer at position i.
func (arr IRArray) IntAt(i int) (int64, error) {
	v, err := arr.at(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(IRInt)
	if !ok {
		return 0, fmt.Errorf("argument %d: expected int, got %s", i, KindOf(v))
	}
	return int64(n), nil
}

// ObjectAt returns the object at position i.
func (arr IRArray) ObjectAt(i int) (IRObject, error) {
	v, err := arr.at(i)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(IRObject)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected object, got %s", i, KindOf(v))
	}
	return obj, nil
}

func (arr IRArray) at(i int) (IRValue, error) {
	if i < 0 || i >= len(arr) {
		return nil, fmt.Errorf("argument %d: out of range (have %d)", i, len(arr))
	}
	return arr[i], nil
}

// StringField returns the string field named key.
func (obj IRObject) StringField(key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("field %q: missing", key)
	}
	s, ok := v.(IRString)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %s", key, KindOf(v))
	}
	return string(s), nil
}

// IntField returns the integer field named key.
func (obj IRObject) IntField(key string) (int64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("field %q: missing", key)
	}
	n, ok := v.(IRInt)
	if !ok {
		return 0, fmt.Errorf("field %q: expected int, got %s", key, KindOf(v))
	}
	return int64(n), nil
}

// KindOf names the JSON kind of v for error messages.
func KindOf(v IRValue) string {
	switch v.(type) {
	case IRNull:
		return "null"
	case IRString:
		return "string"
	case IRInt:
		return "int"
	case IRBool:
		return "bool"
	case IRArray:
		return "array"
	case IRObject:
		return "object"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FromGo converts a decoded YAML or JSON tree into an IRValue. It accepts the
// shapes yaml.v3 and encoding/json (with UseNumber) produce. Nulls and floats
// are rejected.
func FromGo(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not allowed")
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("number out of int64 range: %d", val)
		}
		return IRInt(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are not allowed: %s", s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return IRInt(n), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are not allowed: %v", val)
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// UnmarshalIRValue parses JSON into an IRValue, rejecting floats and nulls.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromGo(raw)
}

// UnmarshalJSON implements json.Unmarshaler. Nulls decode to IRNull.
func (obj *IRObject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*obj = make(IRObject, len(raw))
	for k, v := range raw {
		val, err := decodeLenient(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Nulls decode to IRNull.
func (arr *IRArray) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*arr = make(IRArray, len(raw))
	for i, v := range raw {
		val, err := decodeLenient(v)
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		(*arr)[i] = val
	}
	return nil
}

func decodeLenient(data []byte) (IRValue, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case 'n':
		return IRNull{}, nil
	case '[':
		var arr IRArray
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		var obj IRObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return UnmarshalIRValue(data)
	}
}

// MarshalJSON implements json.Marshaler using the canonical encoding, so the
// API and journal rows render identically.
func (obj IRObject) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(obj)
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (arr IRArray) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(arr)
}
