package grader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/criyle/go-nbjudge/value"
)

// Mode defines the grading protocol selected by the expected-output specification
type Mode int

// Grading modes
const (
	ModeSequence  Mode = iota + 1 // legacy positional pass / fail
	ModeTestCases                 // points weighted test cases
)

func (m Mode) String() string {
	switch m {
	case ModeSequence:
		return "sequence"
	case ModeTestCases:
		return "test_cases"
	default:
		return "unknown"
	}
}

const testCasesKey = "test_cases"

// Spec is a validated expected-output specification
type Spec struct {
	Mode     Mode
	Expected []value.Value // sequence mode
	Cases    []TestCase    // test case mode
	Warnings []string      // load time warnings, copied into every result
}

// NewSequenceSpec creates a legacy specification from the expected values
func NewSequenceSpec(expected []value.Value) *Spec {
	return &Spec{
		Mode:     ModeSequence,
		Expected: expected,
	}
}

// NewCaseSpec validates test cases and creates a test case specification.
// Unnamed cases are named by their position.
func NewCaseSpec(cases []TestCase) (*Spec, error) {
	s := &Spec{
		Mode:  ModeTestCases,
		Cases: make([]TestCase, len(cases)),
	}
	for i, tc := range cases {
		w, err := tc.Validate()
		if err != nil {
			return nil, &ValidationError{Index: i, Name: tc.Name, Err: err}
		}
		if tc.Name == "" {
			tc.Name = defaultCaseName(i)
		}
		for _, msg := range w {
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s: %s", tc.Name, msg))
		}
		s.Cases[i] = tc
	}
	return s, nil
}

// ParseSpec decodes an expected-output specification. An object holding a
// test_cases key selects test case mode; an array is the legacy list of
// expected values; any other value is a single expected value.
func ParseSpec(data []byte) (*Spec, error) {
	v, err := value.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("expected output: %w", err)
	}
	return SpecFromValue(v)
}

// SpecFromValue is ParseSpec on a decoded value
func SpecFromValue(v value.Value) (*Spec, error) {
	switch v.Kind() {
	case value.KindArray:
		return NewSequenceSpec(v.Elements()), nil
	case value.KindObject:
		if tcs, ok := v.Get(testCasesKey); ok {
			return parseCases(tcs)
		}
	}
	return NewSequenceSpec([]value.Value{v}), nil
}

func parseCases(tcs value.Value) (*Spec, error) {
	if tcs.Kind() != value.KindArray {
		return nil, fmt.Errorf("expected output: %s must be an array, got %v", testCasesKey, tcs.Kind())
	}
	cases := make([]TestCase, tcs.Len())
	for i := range cases {
		if err := decodeCase(tcs.Index(i), &cases[i]); err != nil {
			return nil, &ValidationError{Index: i, Name: caseName(tcs.Index(i)), Err: err}
		}
	}
	return NewCaseSpec(cases)
}

func decodeCase(v value.Value, tc *TestCase) error {
	if v.Kind() != value.KindObject {
		return fmt.Errorf("test case must be an object, got %v", v.Kind())
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, tc)
}

func caseName(v value.Value) string {
	n, _ := v.Get("name")
	return n.AsString()
}

// MarshalJSON encodes the specification in its file form
func (s *Spec) MarshalJSON() ([]byte, error) {
	if s.Mode == ModeTestCases {
		var buf bytes.Buffer
		buf.WriteString(`{"` + testCasesKey + `":`)
		b, err := json.Marshal(s.Cases)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	if s.Expected == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Expected)
}

// Len returns the number of expected values or test cases
func (s *Spec) Len() int {
	if s.Mode == ModeTestCases {
		return len(s.Cases)
	}
	return len(s.Expected)
}
