// Package grader grades the json values produced by an executed notebook
// against an expected-output specification.
//
// Two protocols are supported: the legacy positional sequence (every index
// must match, the result passes or fails) and points weighted test cases
// (each case earns its points or nothing, the score is the verdict).
// Grading is pure: the same inputs always give identical results.
package grader

import (
	"slices"

	"github.com/criyle/go-nbjudge/notebook"
	"github.com/criyle/go-nbjudge/value"
)

// Grade grades an execution against the specification. A failed execution or
// a nil specification produce an *ErrorResult, never a panic or an error.
func Grade(exec notebook.Execution, spec *Spec) Result {
	if exec.Failed() {
		return &ErrorResult{
			Error:  ErrMsgExecutionFailed,
			Detail: exec.Reason,
		}
	}

	produced := notebook.Extract(exec.Artifact)
	if spec == nil {
		return &ErrorResult{
			Error:          ErrMsgNoExpected,
			StudentOutputs: produced,
		}
	}
	return spec.Grade(produced)
}

// Grade grades already extracted values with the protocol of the specification
func (s *Spec) Grade(produced []value.Value) Result {
	switch s.Mode {
	case ModeTestCases:
		r := GradeCases(s.Cases, produced)
		r.Warnings = slices.Clone(s.Warnings)
		return r
	default:
		r := GradeSequence(produced, s.Expected)
		r.Warnings = slices.Clone(s.Warnings)
		return r
	}
}
