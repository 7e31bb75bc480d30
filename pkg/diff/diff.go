// Package diff locates the first differing line between an expected and an
// actual text.
//
// The package ignores white spaces at the end of line and end of text
package diff

import (
	"fmt"
	"strings"
	"unicode"
)

// Difference describes the first line that differs
type Difference struct {
	Line     int // 1 based
	Expected string
	Actual   string
}

func (d *Difference) String() string {
	return fmt.Sprintf("at line %d, expected: %s, actual: %s", d.Line, show(d.Expected), show(d.Actual))
}

func show(s string) string {
	if s == "" {
		return "<end>"
	}
	return s
}

// First compares actual with expected line by line.
// if they are the same except space at line / text ending, nil is returned
func First(expected, actual string) *Difference {
	exp := splitTrim(expected)
	act := splitTrim(actual)

	n := max(len(exp), len(act))
	for i := 0; i < n; i++ {
		e, a := at(exp, i), at(act, i)
		if e != a {
			return &Difference{Line: i + 1, Expected: e, Actual: a}
		}
	}
	return nil
}

// splitTrim splits into lines with trailing spaces removed, and drops empty
// lines at the end
func splitTrim(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
