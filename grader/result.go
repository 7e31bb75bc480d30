package grader

import "github.com/criyle/go-nbjudge/value"

// Result is the outcome of a grading call. It is implemented only by
// *SequenceResult, *PointsResult and *ErrorResult.
type Result interface {
	// Verdict returns the percentage score and the result level pass flag
	Verdict() (score float64, passed bool)
	isResult()
}

var (
	_ Result = &SequenceResult{}
	_ Result = &PointsResult{}
	_ Result = &ErrorResult{}
)

// Mismatch records a compared index whose value differs
type Mismatch struct {
	Index    int         `json:"index"`
	Expected value.Value `json:"expected"`
	Received value.Value `json:"received"`
}

// Missing records an expected index the artifact did not produce
type Missing struct {
	Index    int         `json:"index"`
	Expected value.Value `json:"expected"`
}

// SequenceResult is the legacy positional grading result
type SequenceResult struct {
	TotalExpected int           `json:"total_expected"`
	TotalReceived int           `json:"total_received"`
	Matches       int           `json:"matches"`
	Mismatches    []Mismatch    `json:"mismatches"`
	Missing       []Missing     `json:"missing"`
	Extra         []value.Value `json:"extra"`
	Score         float64       `json:"score"`
	Passed        bool          `json:"passed"`
	Warnings      []string      `json:"warnings,omitempty"`
}

// Verdict implements Result
func (r *SequenceResult) Verdict() (float64, bool) {
	return r.Score, r.Passed
}

func (*SequenceResult) isResult() {}

// TestCaseResult is the result of a single test case, earned is either 0 or points
type TestCaseResult struct {
	Name     string       `json:"name"`
	Points   float64      `json:"points"`
	Earned   float64      `json:"earned"`
	Passed   bool         `json:"passed"`
	Error    string       `json:"error,omitempty"`
	Expected *value.Value `json:"expected,omitempty"`
	Received *value.Value `json:"received,omitempty"`
}

// PointsResult is the points weighted grading result. Passed is always true,
// the score is the verdict.
type PointsResult struct {
	TotalTestCases  int              `json:"total_test_cases"`
	TotalPoints     float64          `json:"total_points"`
	EarnedPoints    float64          `json:"earned_points"`
	PassedCases     int              `json:"passed_cases"`
	FailedCases     int              `json:"failed_cases"`
	TestCaseResults []TestCaseResult `json:"test_case_results"`
	Score           float64          `json:"score"`
	Passed          bool             `json:"passed"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// Verdict implements Result
func (r *PointsResult) Verdict() (float64, bool) {
	return r.Score, r.Passed
}

func (*PointsResult) isResult() {}

// Error messages of ErrorResult
const (
	ErrMsgExecutionFailed = "Failed to execute notebook"
	ErrMsgNoExpected      = "No expected outputs provided"
)

// ErrorResult is returned when grading could not compare anything, the score
// is always 0 and passed is always false
type ErrorResult struct {
	Error          string        `json:"error"`
	Detail         string        `json:"detail,omitempty"`
	StudentOutputs []value.Value `json:"student_outputs,omitempty"`
	Score          float64       `json:"score"`
	Passed         bool          `json:"passed"`
}

// Verdict implements Result
func (r *ErrorResult) Verdict() (float64, bool) {
	return 0, false
}

func (*ErrorResult) isResult() {}

func ptr[T any](v T) *T {
	return &v
}
