package idl

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Value is a sealed interface representing a JSON value.
// Only Null, Bool, Number, String, Array, and *Object implement this.
type Value interface {
	idlValue() // Sealed - only these types implement it
}

// Null represents a JSON null value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) idlValue() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) idlValue() {}

// Number represents a JSON number by its literal decimal text.
// Keeping the text avoids float64 rounding of large u64 fields.
type Number string

func (Number) idlValue() {}

// String represents a JSON string.
type String string

func (String) idlValue() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) idlValue() {}

// Pair is a key-value entry used for ordered Object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewObject(P("name", String("House")), P("bump", Number("1")))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// Object is a JSON object that remembers key insertion order.
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]Value
}

func (*Object) idlValue() {}

// NewObject creates an Object from pairs. A repeated key keeps its first
// position and takes the last value, like JSON.parse.
func NewObject(pairs ...Pair) *Object {
	obj := &Object{
		keys:   make([]string, 0, len(pairs)),
		values: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		obj.Set(p.Key, p.Value)
	}
	return obj
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the field names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. Existing keys are replaced in place so the
// field keeps its position; new keys are appended.
func (o *Object) Set(key string, value Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key, preserving the order of the remaining fields.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// Clone returns a shallow copy: a fresh node whose field values are shared
// with o.
func (o *Object) Clone() *Object {
	if o == nil {
		return NewObject()
	}
	clone := &Object{
		keys:   slices.Clone(o.keys),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		clone.values[k] = v
	}
	return clone
}

// All iterates fields in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// GetString returns the field as a Go string when it holds a String.
func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// GetObject returns the field when it holds an *Object.
func (o *Object) GetObject(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

// Equal reports whether a and b are structurally equal.
// Object key order is not significant; array order is.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && numbersEqual(av, bv)
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.All() {
			other, exists := bv.Get(k)
			if !exists || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numbersEqual compares numbers by text first, then numerically so that
// "1" from JSON and "1.0" from YAML compare equal.
func numbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	af, errA := json.Number(a).Float64()
	bf, errB := json.Number(b).Float64()
	return errA == nil && errB == nil && af == bf
}

// FromAny converts a decoded Go value (encoding/json or yaml.v3 output)
// to a Value. Map keys are visited in sorted order since Go maps carry none.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return Number(val), nil
	case int:
		return Number(fmt.Sprintf("%d", val)), nil
	case int64:
		return Number(fmt.Sprintf("%d", val)), nil
	case uint64:
		return Number(fmt.Sprintf("%d", val)), nil
	case float64:
		return Number(formatFloat(val)), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		obj := NewObject()
		for _, k := range keys {
			converted, err := FromAny(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj.Set(k, converted)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// Kind returns a short name for the variant of v, used in error messages.
func Kind(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
