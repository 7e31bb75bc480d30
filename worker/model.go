package worker

import (
	"fmt"
	"time"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/notebook"
)

// Request defines single grading request
type Request struct {
	RequestID string
	Execution notebook.Execution
	Spec      *grader.Spec // nil grades to the no expected outputs error
}

// Response defines worker response for single request
type Response struct {
	RequestID string
	Result    grader.Result
	Report    string
	Time      time.Duration // grading and rendering wall time
	Error     error         // request was not graded, i.e. cancelled before start
}

func (r Response) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: %v", r.RequestID, r.Error)
	}
	score, passed := r.Result.Verdict()
	return fmt.Sprintf("%s: score=%.2f passed=%v", r.RequestID, score, passed)
}
