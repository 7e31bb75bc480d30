package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/notebook"
	"github.com/criyle/go-nbjudge/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(ss ...string) []value.Value {
	ret := make([]value.Value, 0, len(ss))
	for _, s := range ss {
		ret = append(ret, value.MustParse(s))
	}
	return ret
}

func TestRenderPoints(t *testing.T) {
	spec, err := grader.ParseSpec([]byte(`{"test_cases": [
		{"name": "sum", "points": 10, "expected": 5, "compare": ">"},
		{"name": "stats", "points": 2.5, "expected": {"mean": 1}},
		{"name": "late", "points": 1, "expected": 3}
	]}`))
	require.NoError(t, err)
	r := spec.Grade(values(`7`, `{"mean": 2}`))

	want := strings.Join([]string{
		rule,
		"GRADING REPORT",
		rule,
		"Score: 10/13.5 (74.07%)",
		"Passed: 1/3",
		"",
		"✓ sum: 10/10 points",
		"",
		"✗ stats: 0/2.5 points",
		"  Error: Output does not match expected",
		"  Expected: {",
		`  "mean": 1`,
		"}",
		"  Received: {",
		`  "mean": 2`,
		"}",
		"",
		"✗ late: 0/1 points",
		"  Error: Missing output",
		"  Expected: 3",
		"",
		rule,
	}, "\n")
	assert.Equal(t, want, Render(r))
}

func TestRenderSequence(t *testing.T) {
	r := grader.GradeSequence(values(`{"x": 1}`, `{"x": 3}`), values(`{"x": 1}`, `{"x": 2}`, `[1]`))
	r.Extra = values(`"more"`)

	want := strings.Join([]string{
		rule,
		"GRADING REPORT",
		rule,
		"Score: 33.33%",
		"Matches: 1/3",
		"",
		"MISMATCHES:",
		"  Output #1:",
		"    Expected: {",
		`  "x": 2`,
		"}",
		"    Received: {",
		`  "x": 3`,
		"}",
		`    First difference at line 2, expected:   "x": 2, actual:   "x": 3`,
		"",
		"MISSING OUTPUTS:",
		"  Output #2: [",
		"  1",
		"]",
		"",
		"EXTRA OUTPUTS:",
		`  "more"`,
		"",
		rule,
	}, "\n")
	assert.Equal(t, want, Render(r))
}

func TestRenderSequencePassed(t *testing.T) {
	r := grader.GradeSequence(values(`1`), values(`1`))
	out := Render(r)
	assert.Contains(t, out, "Score: 100.00%")
	assert.Contains(t, out, "Matches: 1/1")
	assert.NotContains(t, out, "MISMATCHES")
	assert.NotContains(t, out, "MISSING")
	assert.NotContains(t, out, "EXTRA")
}

func TestRenderWarnings(t *testing.T) {
	spec, err := grader.ParseSpec([]byte(`{"test_cases": [{"name": "w", "points": 1, "expected": {"a": 1}, "compare_fields": {"b": ">"}}]}`))
	require.NoError(t, err)
	out := Render(spec.Grade(values(`{"a": 1}`)))
	assert.Contains(t, out, "WARNINGS:\n  - w: compare_fields key \"b\" is not in expected\n")
}

func TestRenderError(t *testing.T) {
	r := grader.Grade(notebook.ExecutionFailed(""), nil)
	assert.Equal(t, "ERROR: Failed to execute notebook", Render(r))

	r = grader.Grade(notebook.ExecutionFailed("timeout after 600s"), nil)
	assert.Equal(t, "ERROR: Failed to execute notebook\nDetail: timeout after 600s", Render(r))

	r = grader.Grade(notebook.Executed(&notebook.Artifact{Outputs: []notebook.Output{
		{Kind: notebook.KindStdout, Text: "[1]"},
	}}), nil)
	assert.Equal(t, "ERROR: No expected outputs provided\nStudent outputs: 1\n  Output #0: [\n  1\n]", Render(r))
}

func TestRenderDeterministicAndPure(t *testing.T) {
	spec, err := grader.ParseSpec([]byte(`{"test_cases": [{"points": 1, "expected": {"b": 1, "a": [1, 2]}}]}`))
	require.NoError(t, err)
	r := spec.Grade(values(`{"a": [2, 1], "b": 1}`))

	before, err := json.Marshal(r)
	require.NoError(t, err)
	first := Render(r)
	for range 10 {
		assert.Equal(t, first, Render(r))
	}
	after, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
