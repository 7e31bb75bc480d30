package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	_ json.Marshaler   = Value{}
	_ json.Unmarshaler = &Value{}
)

// ErrEmpty is returned by Parse when the input holds no value
var ErrEmpty = errors.New("value: empty input")

// Parse decodes exactly one json value, surrounding white spaces are allowed
// but any trailing data is an error
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return Value{}, ErrEmpty
	}
	if err != nil {
		return Value{}, err
	}
	v, err := parseToken(dec, tok)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("value: extra data after offset %d", dec.InputOffset())
	}
	return v, nil
}

// ParseString is Parse on a string
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

// MustParse parses a json literal and panics on error, for fixed literals and tests
func MustParse(s string) Value {
	v, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parse(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: number %s: %w", t, err)
		}
		return Value{kind: KindNumber, num: f, str: t.String()}, nil
	case json.Delim:
		switch t {
		case '[':
			arr := make([]Value, 0)
			for dec.More() {
				v, err := parse(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindArray, arr: arr}, nil

		case '{':
			o := newObject(0)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				k, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: invalid object key %v", kt)
				}
				v, err := parse(dec)
				if err != nil {
					return Value{}, err
				}
				o.set(k, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindObject, obj: o}, nil
		}
	}
	return Value{}, fmt.Errorf("value: unexpected token %v", tok)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(b []byte) error {
	r, err := Parse(b)
	if err != nil {
		return err
	}
	*v = r
	return nil
}

// MarshalJSON implements json.Marshaler with the compact form
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := writer{buf: &buf, style: styleCompact}
	w.write(v, 0)
	return buf.Bytes(), nil
}

// Pretty renders the value with two space indentation
func Pretty(v Value) string {
	var buf bytes.Buffer
	w := writer{buf: &buf, style: stylePretty}
	w.write(v, 0)
	return buf.String()
}

// Inline renders the value on a single line with a space after separators,
// used in one-line messages
func Inline(v Value) string {
	var buf bytes.Buffer
	w := writer{buf: &buf, style: styleInline}
	w.write(v, 0)
	return buf.String()
}

type style int

const (
	styleCompact style = iota
	styleInline
	stylePretty
)

const indent = "  "

type writer struct {
	buf   *bytes.Buffer
	style style
}

func (w *writer) write(v Value, depth int) {
	switch v.kind {
	case KindNull:
		w.buf.WriteString("null")
	case KindBool:
		if v.b {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
	case KindNumber:
		w.buf.WriteString(v.str)
	case KindString:
		w.writeString(v.str)
	case KindArray:
		if len(v.arr) == 0 {
			w.buf.WriteString("[]")
			return
		}
		w.buf.WriteByte('[')
		for i, e := range v.arr {
			w.separator(i, depth+1)
			w.write(e, depth+1)
		}
		w.newline(depth)
		w.buf.WriteByte(']')
	case KindObject:
		if len(v.obj.keys) == 0 {
			w.buf.WriteString("{}")
			return
		}
		w.buf.WriteByte('{')
		for i, k := range v.obj.keys {
			w.separator(i, depth+1)
			w.writeString(k)
			w.buf.WriteByte(':')
			if w.style != styleCompact {
				w.buf.WriteByte(' ')
			}
			w.write(v.obj.vals[k], depth+1)
		}
		w.newline(depth)
		w.buf.WriteByte('}')
	}
}

func (w *writer) separator(i, depth int) {
	if i > 0 {
		w.buf.WriteByte(',')
		if w.style == styleInline {
			w.buf.WriteByte(' ')
		}
	}
	w.newline(depth)
}

func (w *writer) newline(depth int) {
	if w.style != stylePretty {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(strings.Repeat(indent, depth))
}

func (w *writer) writeString(s string) {
	enc := json.NewEncoder(w.buf)
	enc.SetEscapeHTML(false)
	enc.Encode(s)
	// Encode terminates with a new line
	w.buf.Truncate(w.buf.Len() - 1)
}
