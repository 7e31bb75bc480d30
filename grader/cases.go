package grader

import (
	"fmt"
	"strings"

	"github.com/criyle/go-nbjudge/compare"
	"github.com/criyle/go-nbjudge/value"
)

// Failure messages of test cases
const (
	ErrMsgMissingOutput = "Missing output"
	ErrMsgNotMatch      = "Output does not match expected"
)

// GradeCases grades each test case against the produced value at the same
// index. A passing case earns its points, a failing case earns 0. Cases
// are expected to be validated (see NewCaseSpec).
func GradeCases(cases []TestCase, produced []value.Value) *PointsResult {
	r := &PointsResult{
		TotalTestCases:  len(cases),
		TestCaseResults: make([]TestCaseResult, 0, len(cases)),
		Passed:          true,
	}

	for i := range cases {
		tc := &cases[i]
		r.TotalPoints += tc.Points

		cr := gradeCase(i, tc, produced)
		if cr.Passed {
			r.PassedCases++
			r.EarnedPoints += cr.Earned
		} else {
			r.FailedCases++
		}
		r.TestCaseResults = append(r.TestCaseResults, cr)
	}

	if r.TotalPoints > 0 {
		r.Score = r.EarnedPoints / r.TotalPoints * 100
	}
	return r
}

func gradeCase(i int, tc *TestCase, produced []value.Value) TestCaseResult {
	cr := TestCaseResult{
		Name:   tc.Name,
		Points: tc.Points,
	}
	if cr.Name == "" {
		cr.Name = defaultCaseName(i)
	}
	if i >= len(produced) {
		cr.Error = ErrMsgMissingOutput
		cr.Expected = ptr(tc.Expected)
		return cr
	}

	got := produced[i]
	expected := tc.Expected
	var (
		passed bool
		msg    string
	)
	switch {
	case tc.Compare != compare.EQ && !tc.Expected.IsContainer():
		ok, err := compare.CompareWithOperator(got, tc.Expected, tc.Compare, tc.Tolerance)
		switch {
		case err != nil:
			msg = err.Error()
		case !ok:
			msg = fmt.Sprintf("Comparison failed: %v %v %v", got, tc.Compare, tc.Expected)
		}
		passed = ok && err == nil
		expected = value.String(tc.Compare.String() + " " + value.Inline(tc.Expected))

	case tc.Expected.Kind() == value.KindObject && tc.hasFieldRules():
		passed, msg = compareFields(tc, got)

	default:
		passed = compare.StructuralEqual(got, tc.Expected, tc.Tolerance)
		msg = ErrMsgNotMatch
	}

	if passed {
		cr.Passed = true
		cr.Earned = tc.Points
		return cr
	}
	cr.Error = msg
	cr.Expected = ptr(expected)
	cr.Received = ptr(got)
	return cr
}

// compareFields checks every key of the expected object with the per-field
// operator and tolerance, keys only present in got are ignored
func compareFields(tc *TestCase, got value.Value) (bool, string) {
	if got.Kind() != value.KindObject {
		return false, fmt.Sprintf("Expected an object, received %v", got.Kind())
	}

	var errs []string
	for _, m := range tc.Expected.Members() {
		gv, ok := got.Get(m.Key)
		if !ok {
			errs = append(errs, fmt.Sprintf("Missing field '%s'", m.Key))
			continue
		}
		op, tolerance := tc.fieldRule(m.Key)
		ok, err := compare.CompareWithOperator(gv, m.Value, op, tolerance)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("Field '%s': %v", m.Key, err))
		case !ok:
			errs = append(errs, fmt.Sprintf("Field '%s': %v %v %v", m.Key, gv, op, m.Value))
		}
	}
	if len(errs) > 0 {
		return false, strings.Join(errs, "; ")
	}
	return true, ""
}
