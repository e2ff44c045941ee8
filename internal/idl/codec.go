package idl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Unmarshal parses a complete JSON document into a Value.
func Unmarshal(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON document from r.
// Key order and number text are preserved. Trailing non-whitespace data is an error.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("after document: %w", err)
		}
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

// decodeValue consumes the next complete value from the token stream.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("object[%q]: %w", key, err)
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// Marshal serializes v compactly, in insertion order, without HTML escaping.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal but indents the output the way
// JSON.stringify(v, null, indent) does.
func MarshalIndent(v Value, prefix, indent string) ([]byte, error) {
	compact, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if !json.Valid([]byte(val)) {
			return fmt.Errorf("invalid number literal %q", string(val))
		}
		buf.WriteString(string(val))
	case String:
		return writeString(buf, string(val))
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		i := 0
		for k, elem := range val.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			if err := writeString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown Value type: %T", v)
	}
	return nil
}

// writeString encodes s as a JSON string with HTML escaping disabled.
// U+2028 and U+2029 are written raw, as JavaScript's JSON.stringify does.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// json.Encoder adds trailing newline, remove it
	out := bytes.TrimSuffix(tmp.Bytes(), []byte("\n"))
	if bytes.Contains(out, []byte(`\u202`)) {
		out = unescapeLineSeparators(out)
	}
	buf.Write(out)
	return nil
}

// MarshalJSON implements json.Marshaler so an *Object can be embedded in
// structs encoded with encoding/json.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// UnmarshalJSON implements json.Unmarshaler for *Object.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", Kind(v))
	}
	*o = *obj
	return nil
}
