package grader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/criyle/go-nbjudge/compare"
	"github.com/criyle/go-nbjudge/value"
)

// TestCase defines an independently scored comparison unit
type TestCase struct {
	Name            string                      `json:"name"`
	Points          float64                     `json:"points"`
	Expected        value.Value                 `json:"expected"`
	Tolerance       float64                     `json:"tolerance,omitempty"`
	Compare         compare.Operator            `json:"compare"`
	CompareFields   map[string]compare.Operator `json:"compare_fields,omitzero"`
	ToleranceFields map[string]float64          `json:"tolerance_fields,omitzero"`
}

// ValidationError reports a malformed test case found at load time
type ValidationError struct {
	Index int    // index of the test case
	Name  string // declared name, if any
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("test case %d (%q): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("test case %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	errNegativePoints    = errors.New("points must not be negative")
	errNegativeTolerance = errors.New("tolerance must not be negative")
	errFieldRules        = errors.New("compare_fields / tolerance_fields require an object expected value")
	errOrderingOperand   = errors.New("ordering operator requires a numeric expected value")
)

// hasFieldRules reports whether the case declares per-field rules, an empty
// mapping is still a declaration
func (tc *TestCase) hasFieldRules() bool {
	return tc.CompareFields != nil || tc.ToleranceFields != nil
}

// Validate checks the test case and returns warnings for declarations that
// have no effect
func (tc *TestCase) Validate() (warnings []string, err error) {
	if tc.Points < 0 {
		return nil, fmt.Errorf("%w, got %v", errNegativePoints, tc.Points)
	}
	if tc.Tolerance < 0 {
		return nil, fmt.Errorf("%w, got %v", errNegativeTolerance, tc.Tolerance)
	}
	if !tc.Compare.Valid() {
		return nil, fmt.Errorf("%w: %v", compare.ErrUnknownOperator, tc.Compare)
	}

	kind := tc.Expected.Kind()
	if tc.hasFieldRules() && kind != value.KindObject {
		return nil, fmt.Errorf("%w, got %v", errFieldRules, kind)
	}
	if tc.Compare.Ordering() && !tc.Expected.IsContainer() && kind != value.KindNumber {
		return nil, fmt.Errorf("%w: %v %v", errOrderingOperand, tc.Compare, kind)
	}
	if tc.Compare != compare.EQ && tc.Expected.IsContainer() {
		warnings = append(warnings, fmt.Sprintf(
			"compare %q does not apply to an %v expected value, use compare_fields", tc.Compare.String(), kind))
	}

	for _, k := range sortedKeys(tc.CompareFields) {
		op := tc.CompareFields[k]
		if !op.Valid() {
			return nil, fmt.Errorf("field %q: %w: %v", k, compare.ErrUnknownOperator, op)
		}
		ev, ok := tc.Expected.Get(k)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("compare_fields key %q is not in expected", k))
			continue
		}
		if op.Ordering() && ev.Kind() != value.KindNumber {
			return nil, fmt.Errorf("field %q: %w: %v %v", k, errOrderingOperand, op, ev.Kind())
		}
	}
	for _, k := range sortedKeys(tc.ToleranceFields) {
		if t := tc.ToleranceFields[k]; t < 0 {
			return nil, fmt.Errorf("field %q: %w, got %v", k, errNegativeTolerance, t)
		}
		if _, ok := tc.Expected.Get(k); !ok {
			warnings = append(warnings, fmt.Sprintf("tolerance_fields key %q is not in expected", k))
		}
	}
	return warnings, nil
}

// fieldRule returns the effective operator and tolerance for an object field
func (tc *TestCase) fieldRule(k string) (compare.Operator, float64) {
	op, ok := tc.CompareFields[k]
	if !ok {
		op = compare.EQ
	}
	t, ok := tc.ToleranceFields[k]
	if !ok {
		t = tc.Tolerance
	}
	return op, t
}

func defaultCaseName(i int) string {
	return fmt.Sprintf("Test Case %d", i+1)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
