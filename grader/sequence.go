package grader

import (
	"github.com/criyle/go-nbjudge/compare"
	"github.com/criyle/go-nbjudge/value"
)

// GradeSequence grades produced values against expected values by position.
// Each expected index is a match, a mismatch or missing; produced values past
// the expected length are extra and never compared.
func GradeSequence(produced, expected []value.Value) *SequenceResult {
	r := &SequenceResult{
		TotalExpected: len(expected),
		TotalReceived: len(produced),
		Mismatches:    make([]Mismatch, 0),
		Missing:       make([]Missing, 0),
		Extra:         make([]value.Value, 0),
	}

	for i, exp := range expected {
		if i >= len(produced) {
			r.Missing = append(r.Missing, Missing{Index: i, Expected: exp})
			continue
		}
		if compare.StructuralEqual(produced[i], exp, 0) {
			r.Matches++
		} else {
			r.Mismatches = append(r.Mismatches, Mismatch{Index: i, Expected: exp, Received: produced[i]})
		}
	}
	if len(produced) > len(expected) {
		r.Extra = append(r.Extra, produced[len(expected):]...)
	}

	if len(expected) > 0 {
		r.Score = float64(r.Matches) / float64(len(expected)) * 100
	}
	r.Passed = r.Matches == len(expected) &&
		len(r.Mismatches) == 0 &&
		len(r.Missing) == 0 &&
		len(r.Extra) == 0
	return r
}
