package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/criyle/go-nbjudge/value"
)

// ErrNotOrdered is returned when an ordering operator is applied to operands
// that are not both numbers
var ErrNotOrdered = errors.New("ordering comparison on non-numeric operands")

// StructuralEqual reports whether got is equivalent to expected.
//
// Numbers match within the relative tolerance of expected (absolute when
// expected is 0). When tolerance is 0 they must be exactly equal as decimal
// literals, so integers beyond float64 precision stay distinct. Objects need identical key
// sets, arrays identical length and order. Any other kind mismatch is unequal.
func StructuralEqual(got, expected value.Value, tolerance float64) bool {
	switch got.Kind() {
	case value.KindNull:
		return expected.Kind() == value.KindNull

	case value.KindBool:
		return expected.Kind() == value.KindBool && got.AsBool() == expected.AsBool()

	case value.KindNumber:
		return expected.Kind() == value.KindNumber && numberEqual(got, expected, tolerance)

	case value.KindString:
		return expected.Kind() == value.KindString && got.AsString() == expected.AsString()

	case value.KindArray:
		if expected.Kind() != value.KindArray || got.Len() != expected.Len() {
			return false
		}
		for i := 0; i < got.Len(); i++ {
			if !StructuralEqual(got.Index(i), expected.Index(i), tolerance) {
				return false
			}
		}
		return true

	case value.KindObject:
		if expected.Kind() != value.KindObject || got.Len() != expected.Len() {
			return false
		}
		for _, m := range got.Members() {
			ev, ok := expected.Get(m.Key)
			if !ok || !StructuralEqual(m.Value, ev, tolerance) {
				return false
			}
		}
		return true

	default:
		panic(fmt.Sprintf("compare: unknown value kind %v", got.Kind()))
	}
}

// CompareWithOperator evaluates `got op expected`.
//
// For two numbers EQ applies the tolerance rule of StructuralEqual, NE is its
// negation and the ordering operators are exact comparisons without
// tolerance. For other operands only EQ and NE are defined and both are exact,
// the tolerance is ignored; an ordering operator returns an error wrapping
// ErrNotOrdered.
func CompareWithOperator(got, expected value.Value, op Operator, tolerance float64) (bool, error) {
	if got.Kind() == value.KindNumber && expected.Kind() == value.KindNumber {
		switch op {
		case EQ:
			return numberEqual(got, expected, tolerance), nil
		case NE:
			return !numberEqual(got, expected, tolerance), nil
		}
		c := value.CompareNumbers(got, expected)
		switch op {
		case LT:
			return c < 0, nil
		case LTE:
			return c <= 0, nil
		case GT:
			return c > 0, nil
		case GTE:
			return c >= 0, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnknownOperator, op)
	}

	switch op {
	case EQ:
		return StructuralEqual(got, expected, 0), nil
	case NE:
		return !StructuralEqual(got, expected, 0), nil
	case LT, LTE, GT, GTE:
		return false, fmt.Errorf("%w: %v %v %v", ErrNotOrdered, got.Kind(), op, expected.Kind())
	}
	return false, fmt.Errorf("%w: %v", ErrUnknownOperator, op)
}

// numberEqual uses float64 only for the relative tolerance rule
func numberEqual(got, expected value.Value, tolerance float64) bool {
	if tolerance > 0 {
		a, b := got.AsNumber(), expected.AsNumber()
		if b == 0 {
			return math.Abs(a) <= tolerance
		}
		return math.Abs(a-b)/math.Abs(b) <= tolerance
	}
	return value.CompareNumbers(got, expected) == 0
}
