// Package value provides the tagged JSON value model used across the grader.
//
// A Value is one of Null, Bool, Number, String, Array or Object. Objects keep
// the order their keys first appeared in, so rendering is deterministic and
// follows the emitting program. Numbers keep their original literal, which
// backs both rendering and exact comparison through Rat; the float64 value is
// only an approximation for tolerance arithmetic.
package value

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// maxRatExponent bounds the decimal exponent of a literal expanded exactly
const maxRatExponent = 1000

// Kind defines the tag of a Value
type Kind int

// Kinds of json values
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable json value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string // string content, or number literal
	arr  []Value
	obj  *object
}

// Member is a single key / value pair of an object
type Member struct {
	Key   string
	Value Value
}

type object struct {
	keys []string
	vals map[string]Value
}

func newObject(n int) *object {
	return &object{
		keys: make([]string, 0, n),
		vals: make(map[string]Value, n),
	}
}

// set keeps the position of the first occurrence, last value wins
func (o *object) set(k string, v Value) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

// Null returns the null value
func Null() Value {
	return Value{}
}

// Bool creates a bool value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int creates a number value from an integer
func Int(i int64) Value {
	return Value{kind: KindNumber, num: float64(i), str: strconv.FormatInt(i, 10)}
}

// Number creates a number value from a float
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f, str: formatFloat(f)}
}

// String creates a string value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Array creates an array value
func Array(vs ...Value) Value {
	arr := make([]Value, len(vs))
	copy(arr, vs)
	return Value{kind: KindArray, arr: arr}
}

// Object creates an object value, duplicated keys keep the last value
func Object(ms ...Member) Value {
	o := newObject(len(ms))
	for _, m := range ms {
		o.set(m.Key, m.Value)
	}
	return Value{kind: KindObject, obj: o}
}

// M is a shorthand for Member
func M(k string, v Value) Member {
	return Member{Key: k, Value: v}
}

// Kind returns the tag of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsContainer reports whether the value is an array or an object
func (v Value) IsContainer() bool {
	return v.kind == KindArray || v.kind == KindObject
}

// AsBool returns the bool content, false for other kinds
func (v Value) AsBool() bool {
	return v.kind == KindBool && v.b
}

// AsNumber returns the numeric content, 0 for other kinds
func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Rat returns the exact value of a number, nil for other kinds and for
// infinities or NaN. Literals with an exponent beyond ±1000 fall back to the
// float64 value.
func (v Value) Rat() *big.Rat {
	if v.kind != KindNumber {
		return nil
	}
	if exactLiteral(v.str) {
		if r, ok := new(big.Rat).SetString(v.str); ok {
			return r
		}
	}
	if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
		return nil
	}
	return new(big.Rat).SetFloat64(v.num)
}

func exactLiteral(s string) bool {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return s != ""
	}
	e, err := strconv.Atoi(s[i+1:])
	return err == nil && e >= -maxRatExponent && e <= maxRatExponent
}

// CompareNumbers compares two numbers exactly, returning -1, 0 or +1. Values
// without an exact form compare by their float64 approximation.
func CompareNumbers(a, b Value) int {
	if ra, rb := a.Rat(), b.Rat(); ra != nil && rb != nil {
		return ra.Cmp(rb)
	}
	switch x, y := a.AsNumber(), b.AsNumber(); {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// AsString returns the string content, empty for other kinds
func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// Len returns number of elements of an array or members of an object
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj.keys)
	default:
		return 0
	}
}

// Index returns the i-th element of an array
func (v Value) Index(i int) Value {
	return v.arr[i]
}

// Get returns the member value of an object by key
func (v Value) Get(k string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	r, ok := v.obj.vals[k]
	return r, ok
}

// Keys returns object keys in order
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return append([]string(nil), v.obj.keys...)
}

// Members returns object members in order
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	ms := make([]Member, 0, len(v.obj.keys))
	for _, k := range v.obj.keys {
		ms = append(ms, Member{Key: k, Value: v.obj.vals[k]})
	}
	return ms
}

// Elements returns a copy of the array elements
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return append([]Value(nil), v.arr...)
}

// String implements fmt.Stringer with the inline rendering
func (v Value) String() string {
	return Inline(v)
}

// formatFloat follows the shortest round-trip form and always keeps a
// fractional part for integral floats (1.0 rather than 1)
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) {
		s += ".0"
	}
	return s
}

// Equal reports whether both values are identical json values. Numbers are
// compared by exact value so 1 equals 1.0, object key order is not significant.
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
		return CompareNumbers(v, o) == 0
	case KindString:
		return v.str == o.str
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj.keys) != len(o.obj.keys) {
			return false
		}
		for k, a := range v.obj.vals {
			b, ok := o.obj.vals[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}
