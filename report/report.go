// Package report renders grading results into human readable text
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/pkg/diff"
	"github.com/criyle/go-nbjudge/value"
)

const (
	title    = "GRADING REPORT"
	ruleSize = 60
	passMark = "✓"
	failMark = "✗"
)

var rule = strings.Repeat("=", ruleSize)

// Render renders a grading result. It does not modify the result.
func Render(r grader.Result) string {
	var b builder
	switch r := r.(type) {
	case *grader.ErrorResult:
		b.line("ERROR: " + r.Error)
		if r.Detail != "" {
			b.line("Detail: " + r.Detail)
		}
		if r.StudentOutputs != nil {
			b.line(fmt.Sprintf("Student outputs: %d", len(r.StudentOutputs)))
			for i, v := range r.StudentOutputs {
				b.line(fmt.Sprintf("  Output #%d: %s", i, value.Pretty(v)))
			}
		}
		return b.String()

	case *grader.PointsResult:
		b.header()
		renderPoints(&b, r)
		b.warnings(r.Warnings)
		b.line(rule)

	case *grader.SequenceResult:
		b.header()
		renderSequence(&b, r)
		b.warnings(r.Warnings)
		b.line(rule)

	default:
		panic(fmt.Sprintf("report: unknown result type %T", r))
	}
	return b.String()
}

func renderPoints(b *builder, r *grader.PointsResult) {
	b.line(fmt.Sprintf("Score: %s/%s (%.2f%%)", formatPoints(r.EarnedPoints), formatPoints(r.TotalPoints), r.Score))
	b.line(fmt.Sprintf("Passed: %d/%d", r.PassedCases, r.TotalTestCases))
	b.line("")

	for _, c := range r.TestCaseResults {
		mark := failMark
		if c.Passed {
			mark = passMark
		}
		b.line(fmt.Sprintf("%s %s: %s/%s points", mark, c.Name, formatPoints(c.Earned), formatPoints(c.Points)))
		if !c.Passed && c.Error != "" {
			b.line("  Error: " + c.Error)
			if c.Expected != nil {
				b.line("  Expected: " + value.Pretty(*c.Expected))
			}
			if c.Received != nil {
				b.line("  Received: " + value.Pretty(*c.Received))
			}
		}
		b.line("")
	}
}

func renderSequence(b *builder, r *grader.SequenceResult) {
	b.line(fmt.Sprintf("Score: %.2f%%", r.Score))
	b.line(fmt.Sprintf("Matches: %d/%d", r.Matches, r.TotalExpected))
	b.line("")

	if len(r.Mismatches) > 0 {
		b.line("MISMATCHES:")
		for _, m := range r.Mismatches {
			exp, got := value.Pretty(m.Expected), value.Pretty(m.Received)
			b.line(fmt.Sprintf("  Output #%d:", m.Index))
			b.line("    Expected: " + exp)
			b.line("    Received: " + got)
			if d := diff.First(exp, got); d != nil {
				b.line("    First difference " + d.String())
			}
			b.line("")
		}
	}

	if len(r.Missing) > 0 {
		b.line("MISSING OUTPUTS:")
		for _, m := range r.Missing {
			b.line(fmt.Sprintf("  Output #%d: %s", m.Index, value.Pretty(m.Expected)))
		}
		b.line("")
	}

	if len(r.Extra) > 0 {
		b.line("EXTRA OUTPUTS:")
		for _, v := range r.Extra {
			b.line("  " + value.Pretty(v))
		}
		b.line("")
	}
}

// formatPoints uses the shortest exact decimal form (10, 2.5)
func formatPoints(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type builder struct {
	strings.Builder
}

func (b *builder) line(s string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(s)
}

func (b *builder) header() {
	b.line(rule)
	b.line(title)
	b.line(rule)
}

func (b *builder) warnings(ws []string) {
	if len(ws) == 0 {
		return
	}
	b.line("WARNINGS:")
	for _, w := range ws {
		b.line("  - " + w)
	}
	b.line("")
}
