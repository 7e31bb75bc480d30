// Package compare implements the value comparator: structural equivalence
// with relative numeric tolerance and the comparison operators.
package compare

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Operator defines a comparison operator
type Operator int

// Comparison operators, EQ is the default
const (
	EQ Operator = iota
	LT
	LTE
	GT
	GTE
	NE
)

// ErrUnknownOperator is returned when parsing an unrecognized operator
var ErrUnknownOperator = errors.New("unknown comparison operator")

var operatorSymbols = [...]string{
	EQ:  "==",
	LT:  "<",
	LTE: "<=",
	GT:  ">",
	GTE: ">=",
	NE:  "!=",
}

var operatorNames = map[string]Operator{
	"==": EQ, "eq": EQ,
	"<": LT, "lt": LT,
	"<=": LTE, "lte": LTE,
	">": GT, "gt": GT,
	">=": GTE, "gte": GTE,
	"!=": NE, "ne": NE,
}

// ParseOperator parses symbols (==, <, <=, >, >=, !=) or names (eq, lt, lte,
// gt, gte, ne, case insensitive)
func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return EQ, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorSymbols) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorSymbols[o]
}

// Valid reports whether o is one of the defined operators
func (o Operator) Valid() bool {
	return o >= EQ && o <= NE
}

// Ordering reports whether the operator requires ordered (numeric) operands
func (o Operator) Ordering() bool {
	switch o {
	case LT, LTE, GT, GTE:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the operator as its symbol
func (o Operator) MarshalJSON() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperator, int(o))
	}
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an operator symbol or name
func (o *Operator) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownOperator, b)
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
