package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
)

const testNotebook = `{
	"nbformat": 4,
	"nbformat_minor": 5,
	"metadata": {},
	"cells": [{
		"cell_type": "code",
		"source": ["print(1)"],
		"outputs": [{"output_type": "stream", "name": "stdout", "text": ["[1, 2]\n"]}]
	}]
}`

func ptr[T any](v T) *T {
	return &v
}

func TestConvertRequest_Inline(t *testing.T) {
	r, err := ConvertRequest(&Request{
		RequestID: "a",
		Notebook:  json.RawMessage(testNotebook),
		Expected:  json.RawMessage(`[[1, 2]]`),
	}, nil)
	if err != nil {
		t.Fatalf("ConvertRequest error: %v", err)
	}
	if r.RequestID != "a" {
		t.Errorf("request id = %q", r.RequestID)
	}
	if r.Execution.Failed() {
		t.Fatal("expected successful execution")
	}
	if len(r.Execution.Artifact.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(r.Execution.Artifact.Outputs))
	}
	if r.Spec == nil || r.Spec.Mode != grader.ModeSequence {
		t.Fatalf("unexpected spec %+v", r.Spec)
	}
}

func TestConvertRequest_ExecutionError(t *testing.T) {
	r, err := ConvertRequest(&Request{ExecutionError: ptr("timeout")}, nil)
	if err != nil {
		t.Fatalf("ConvertRequest error: %v", err)
	}
	if !r.Execution.Failed() || r.Execution.Reason != "timeout" {
		t.Errorf("unexpected execution %+v", r.Execution)
	}
	if r.Spec != nil {
		t.Errorf("expected nil spec, got %+v", r.Spec)
	}
}

func TestConvertRequest_NoNotebook(t *testing.T) {
	for _, nb := range []string{"", "null", "  "} {
		_, err := ConvertRequest(&Request{Notebook: json.RawMessage(nb)}, nil)
		if !errors.Is(err, ErrNoNotebook) {
			t.Errorf("%q: expected ErrNoNotebook, got %v", nb, err)
		}
	}
}

func TestConvertRequest_InvalidNotebook(t *testing.T) {
	_, err := ConvertRequest(&Request{Notebook: json.RawMessage(`{"cells": []}`)}, nil)
	if err == nil || !strings.HasPrefix(err.Error(), "notebook: ") {
		t.Errorf("expected notebook error, got %v", err)
	}
}

func TestConvertRequest_InvalidSpec(t *testing.T) {
	_, err := ConvertRequest(&Request{
		Notebook: json.RawMessage(testNotebook),
		Expected: json.RawMessage(`{"test_cases": [{"points": -1, "expected": 1}]}`),
	}, nil)
	var ve *grader.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConvertRequest_Assignment(t *testing.T) {
	specs := store.NewMemoryStore()
	if err := specs.Put("hw1", "hw1.json", []byte(`{"test_cases": [{"points": 1, "expected": [1, 2]}]}`)); err != nil {
		t.Fatal(err)
	}

	r, err := ConvertRequest(&Request{Notebook: json.RawMessage(testNotebook), Assignment: "hw1"}, specs)
	if err != nil {
		t.Fatalf("ConvertRequest error: %v", err)
	}
	if r.Spec == nil || r.Spec.Mode != grader.ModeTestCases {
		t.Fatalf("unexpected spec %+v", r.Spec)
	}

	// inline expected wins over the assignment
	r, err = ConvertRequest(&Request{
		Notebook:   json.RawMessage(testNotebook),
		Expected:   json.RawMessage(`[1]`),
		Assignment: "hw1",
	}, specs)
	if err != nil {
		t.Fatalf("ConvertRequest error: %v", err)
	}
	if r.Spec.Mode != grader.ModeSequence {
		t.Errorf("expected inline spec, got %v", r.Spec.Mode)
	}

	_, err = ConvertRequest(&Request{Notebook: json.RawMessage(testNotebook), Assignment: "hw2"}, specs)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = ConvertRequest(&Request{Notebook: json.RawMessage(testNotebook), Assignment: "hw1"}, nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound without store, got %v", err)
	}
}

func TestConvertResponse(t *testing.T) {
	r, err := ConvertRequest(&Request{
		RequestID: "b",
		Notebook:  json.RawMessage(testNotebook),
		Expected:  json.RawMessage(`[[1, 2]]`),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	wr := worker.Grade(r)
	wr.Time = time.Millisecond
	res := ConvertResponse(wr)
	if res.RequestID != "b" || res.ErrorMsg != "" || res.Time != uint64(time.Millisecond) {
		t.Errorf("unexpected response %+v", res)
	}

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	result, ok := m["result"].(map[string]any)
	if !ok {
		t.Fatalf("missing result: %s", b)
	}
	if result["passed"] != true || result["score"] != 100.0 {
		t.Errorf("unexpected result %v", result)
	}
	if !strings.Contains(res.Report, "Matches: 1/1") {
		t.Errorf("unexpected report %q", res.Report)
	}
	if got := res.String(); got != "Response[b, score=100.00, passed=true, time=1000000]" {
		t.Errorf("String() = %q", got)
	}
}

func TestConvertResponse_Error(t *testing.T) {
	res := ConvertResponse(worker.Response{RequestID: "c", Error: errors.New("context canceled")})
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"requestId":"c","time":0,"error":"context canceled"}` {
		t.Errorf("unexpected json %s", b)
	}
}

func TestConvertEntry(t *testing.T) {
	specs := store.NewMemoryStore()
	if err := specs.Put("hw", "hw.yaml", []byte("- 1\n- {a: 2}\n")); err != nil {
		t.Fatal(err)
	}
	e, err := specs.Get("hw")
	if err != nil {
		t.Fatal(err)
	}
	s, err := ConvertEntry(e)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != "hw" || s.Name != "expected_output.yaml" || s.Mode != "sequence" || s.Count != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
	if string(s.Spec) != `[1,{"a":2}]` {
		t.Errorf("unexpected spec %s", s.Spec)
	}
}
