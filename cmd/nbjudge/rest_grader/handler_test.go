package restgrader

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/criyle/go-nbjudge/cmd/nbjudge/model"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

const testNotebook = `{
	"nbformat": 4,
	"nbformat_minor": 5,
	"metadata": {},
	"cells": [
		{"cell_type": "markdown", "source": "# hw"},
		{"cell_type": "code", "source": "f()", "outputs": [
			{"output_type": "execute_result", "execution_count": 1, "metadata": {}, "data": {"text/plain": "42"}}
		]},
		{"cell_type": "code", "source": "g()", "outputs": [
			{"output_type": "stream", "name": "stdout", "text": "{\"mean\": 2.5}\n"}
		]}
	]
}`

// cancelWorker never grades, it reports the request as cancelled
type cancelWorker struct {
	worker.Worker
}

func (cancelWorker) Submit(_ context.Context, req *worker.Request) <-chan worker.Response {
	ch := make(chan worker.Response, 1)
	ch <- worker.Response{RequestID: req.RequestID, Error: context.Canceled}
	return ch
}

// stallWorker accepts requests but never answers them
type stallWorker struct {
	worker.Worker
}

func (stallWorker) Submit(context.Context, *worker.Request) <-chan worker.Response {
	return make(chan worker.Response)
}

func newRouter(t *testing.T, w worker.Worker, specs store.SpecStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := zaptest.NewLogger(t)
	NewGradeHandle(w, specs, logger).Register(r)
	NewSpecHandle(specs).Register(r)
	return r
}

func newWorker(t *testing.T) worker.Worker {
	t.Helper()
	w := worker.New(worker.Config{Parallelism: 2})
	w.Start()
	t.Cleanup(w.Shutdown)
	return w
}

func serve(r http.Handler, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

func gradeBody(t *testing.T, req model.Request) io.Reader {
	t.Helper()
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(b)
}

type gradeResponse struct {
	RequestID string          `json:"requestId"`
	Result    json.RawMessage `json:"result"`
	Report    string          `json:"report"`
}

type pointsResult struct {
	TotalPoints  float64 `json:"total_points"`
	EarnedPoints float64 `json:"earned_points"`
	Score        float64 `json:"score"`
	Passed       bool    `json:"passed"`
}

func TestHandleGrade(t *testing.T) {
	router := newRouter(t, newWorker(t), store.NewMemoryStore())

	recorder := serve(router, "POST", "/grade", "application/json", gradeBody(t, model.Request{
		RequestID: "qwq",
		Notebook:  json.RawMessage(testNotebook),
		Expected: json.RawMessage(`{"test_cases": [
			{"name": "answer", "points": 3, "expected": 40, "compare": ">="},
			{"name": "mean", "points": 1, "expected": {"mean": 2.4}, "tolerance_fields": {"mean": 0.01}}
		]}`),
	}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	t.Logf("Response body: %s", recorder.Body.String())

	var resp gradeResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.RequestID != "qwq" {
		t.Errorf("Expected request id qwq, got %q", resp.RequestID)
	}
	var res pointsResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if res.TotalPoints != 4 || res.EarnedPoints != 3 || res.Score != 75 || !res.Passed {
		t.Errorf("Unexpected result %+v", res)
	}
	if !strings.Contains(resp.Report, "✓ answer: 3/3 points") || !strings.Contains(resp.Report, "✗ mean: 0/1 points") {
		t.Errorf("Unexpected report:\n%s", resp.Report)
	}
}

func TestHandleGradeExecutionError(t *testing.T) {
	router := newRouter(t, newWorker(t), store.NewMemoryStore())
	msg := "Kernel died"

	recorder := serve(router, "POST", "/grade", "application/json", gradeBody(t, model.Request{
		ExecutionError: &msg,
		Expected:       json.RawMessage(`[1]`),
	}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var resp gradeResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := `{"error":"Failed to execute notebook","detail":"Kernel died","score":0,"passed":false}`
	if string(resp.Result) != want {
		t.Errorf("Expected %s, got %s", want, resp.Result)
	}
}

func TestHandleGradeAssignment(t *testing.T) {
	specs := store.NewMemoryStore()
	router := newRouter(t, newWorker(t), specs)

	recorder := serve(router, "PUT", "/spec/hw1", "application/yaml", strings.NewReader("- 42\n- {mean: 2.5}\n"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	recorder = serve(router, "POST", "/grade", "application/json", gradeBody(t, model.Request{
		Notebook:   json.RawMessage(testNotebook),
		Assignment: "hw1",
	}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	var resp gradeResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Report, "Score: 100.00%") {
		t.Errorf("Unexpected report:\n%s", resp.Report)
	}

	recorder = serve(router, "POST", "/grade", "application/json", gradeBody(t, model.Request{
		Notebook:   json.RawMessage(testNotebook),
		Assignment: "hw2",
	}))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestHandleGradeBadRequest(t *testing.T) {
	router := newRouter(t, newWorker(t), store.NewMemoryStore())

	for name, body := range map[string]string{
		"malformed json": `{`,
		"no notebook":    `{"expected": [1]}`,
		"bad notebook":   `{"notebook": {"cells": []}}`,
		"bad spec":       `{"notebook": ` + testNotebook + `, "expected": {"test_cases": [{"points": 1, "expected": 1, "compare": "~"}]}}`,
	} {
		recorder := serve(router, "POST", "/grade", "application/json", strings.NewReader(body))
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", name, http.StatusBadRequest, recorder.Code)
		}
	}
}

func TestHandleGradeCancelled(t *testing.T) {
	router := newRouter(t, cancelWorker{}, store.NewMemoryStore())

	recorder := serve(router, "POST", "/grade", "application/json", gradeBody(t, model.Request{
		Notebook: json.RawMessage(testNotebook),
	}))
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
}

func TestHandleGradeClientGone(t *testing.T) {
	router := newRouter(t, stallWorker{}, store.NewMemoryStore())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest("POST", "/grade", gradeBody(t, model.Request{
		Notebook: json.RawMessage(testNotebook),
	})).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		done <- recorder
	}()

	select {
	case recorder := <-done:
		if recorder.Code != http.StatusInternalServerError {
			t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), context.DeadlineExceeded.Error()) {
			t.Errorf("Unexpected body %s", recorder.Body.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("grade handler did not return after the request context ended")
	}
}

func TestHandleGradeAfterShutdown(t *testing.T) {
	w := worker.New(worker.Config{Parallelism: 1})
	w.Start()
	w.Shutdown()
	router := newRouter(t, w, store.NewMemoryStore())

	recorder := serve(router, "POST", "/grade", "application/json", gradeBody(t, model.Request{
		Notebook: json.RawMessage(testNotebook),
		Expected: json.RawMessage(`[42]`),
	}))
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), worker.ErrShutdown.Error()) {
		t.Errorf("Unexpected body %s", recorder.Body.String())
	}
}

func TestSpecHandle(t *testing.T) {
	router := newRouter(t, newWorker(t), store.NewMemoryStore())

	recorder := serve(router, "PUT", "/spec/hw1", "application/json",
		strings.NewReader(`{"test_cases": [{"points": 1, "expected": {"a": 1}, "compare_fields": {"b": ">"}}]}`))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	recorder = serve(router, "POST", "/spec", "application/json", strings.NewReader(`[1, 2]`))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var id string
	if err := json.Unmarshal(recorder.Body.Bytes(), &id); err != nil || id == "" {
		t.Fatalf("Expected generated id, got %s", recorder.Body.String())
	}

	recorder = serve(router, "GET", "/spec", "", nil)
	var list map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list["hw1"] != "expected_output.json" || list[id] != "expected_output.json" {
		t.Errorf("Unexpected list %v", list)
	}

	recorder = serve(router, "GET", "/spec/hw1", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var sum model.SpecSummary
	if err := json.Unmarshal(recorder.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Mode != "test_cases" || sum.Count != 1 || len(sum.Warnings) != 1 {
		t.Errorf("Unexpected summary %+v", sum)
	}

	recorder = serve(router, "PUT", "/spec/hw1", "application/json", strings.NewReader(`{"test_cases": 1}`))
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	recorder = serve(router, "DELETE", "/spec/hw1", "", nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	recorder = serve(router, "DELETE", "/spec/hw1", "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
	recorder = serve(router, "GET", "/spec/hw1", "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}
