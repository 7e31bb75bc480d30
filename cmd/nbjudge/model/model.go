package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/notebook"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
)

// ErrNoNotebook is returned when neither a notebook nor an execution error is given
var ErrNoNotebook = errors.New("no notebook provided")

// Request defines single grading request
type Request struct {
	RequestID string `json:"requestId"`

	// Notebook is the executed nbformat document
	Notebook json.RawMessage `json:"notebook,omitempty"`
	// ExecutionError marks the execution failed, the notebook is ignored
	ExecutionError *string `json:"executionError,omitempty"`

	// Expected is an inline specification, it takes priority over Assignment
	Expected   json.RawMessage `json:"expected,omitempty"`
	Assignment string          `json:"assignment,omitempty"`
}

// Response defines single grading response
type Response struct {
	RequestID string        `json:"requestId"`
	Result    grader.Result `json:"result,omitempty"`
	Report    string        `json:"report,omitempty"`
	Time      uint64        `json:"time"` // ns
	ErrorMsg  string        `json:"error,omitempty"`
}

func (r Response) String() string {
	if r.ErrorMsg != "" {
		return fmt.Sprintf("Response[%s, error=%s]", r.RequestID, r.ErrorMsg)
	}
	score, passed := r.Result.Verdict()
	return fmt.Sprintf("Response[%s, score=%.2f, passed=%v, time=%d]", r.RequestID, score, passed, r.Time)
}

// ConvertRequest converts json request into worker request. The specification
// is resolved from the store when only an assignment is given.
func ConvertRequest(r *Request, specs store.SpecStore) (*worker.Request, error) {
	req := &worker.Request{
		RequestID: r.RequestID,
	}

	exec, err := convertExecution(r)
	if err != nil {
		return nil, err
	}
	req.Execution = exec

	spec, err := resolveSpec(r, specs)
	if err != nil {
		return nil, err
	}
	req.Spec = spec
	return req, nil
}

func convertExecution(r *Request) (notebook.Execution, error) {
	if r.ExecutionError != nil {
		return notebook.ExecutionFailed(*r.ExecutionError), nil
	}
	if isAbsent(r.Notebook) {
		return notebook.Execution{}, ErrNoNotebook
	}
	a, err := notebook.Parse(r.Notebook)
	if err != nil {
		return notebook.Execution{}, err
	}
	return notebook.Executed(a), nil
}

func resolveSpec(r *Request, specs store.SpecStore) (*grader.Spec, error) {
	if !isAbsent(r.Expected) {
		s, err := grader.ParseSpec(r.Expected)
		if err != nil {
			return nil, fmt.Errorf("expected: %w", err)
		}
		return s, nil
	}
	if r.Assignment == "" {
		return nil, nil
	}
	if specs == nil {
		return nil, fmt.Errorf("assignment %q: %w", r.Assignment, store.ErrNotFound)
	}
	e, err := specs.Get(r.Assignment)
	if err != nil {
		return nil, fmt.Errorf("assignment %q: %w", r.Assignment, err)
	}
	return e.Spec, nil
}

func isAbsent(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// ConvertResponse converts worker response into json response
func ConvertResponse(r worker.Response) Response {
	ret := Response{
		RequestID: r.RequestID,
		Result:    r.Result,
		Report:    r.Report,
		Time:      uint64(r.Time),
	}
	if r.Error != nil {
		ret.ErrorMsg = r.Error.Error()
	}
	return ret
}

// SpecSummary describes a stored specification
type SpecSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Mode     string          `json:"mode"`
	Count    int             `json:"count"`
	Warnings []string        `json:"warnings,omitempty"`
	Spec     json.RawMessage `json:"spec"`
}

// ConvertEntry converts a stored specification into its summary
func ConvertEntry(e *store.Entry) (SpecSummary, error) {
	b, err := json.Marshal(e.Spec)
	if err != nil {
		return SpecSummary{}, err
	}
	return SpecSummary{
		ID:       e.ID,
		Name:     e.Name,
		Mode:     e.Spec.Mode.String(),
		Count:    e.Spec.Len(),
		Warnings: e.Spec.Warnings,
		Spec:     b,
	}, nil
}
