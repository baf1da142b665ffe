package equal

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// hunkMinLines is the size above which multi-line strings are diffed line by
// line instead of being printed whole.
const hunkMinLines = 5

// hunkContext is the number of unchanged lines kept around a change.
const hunkContext = 2

// Diff describes the first difference found by Compare.
type Diff struct {
	Path Path

	// Actual and Expected are the rendered values. A property that exists
	// on one side only renders as <missing> on the other.
	Actual   string
	Expected string

	// Hunk holds a line diff of long multi-line strings. When set it
	// replaces the whole-value lines.
	Hunk []string
}

// Lines renders the diff body below the header.
func (d *Diff) Lines() []string {
	lines := []string{"Path: " + d.Path.String()}
	if len(d.Hunk) > 0 {
		return append(lines, d.Hunk...)
	}
	return append(lines, "- "+d.Actual, "+ "+d.Expected)
}

func (d *Diff) String() string {
	return "Difference found at:\n" + strings.Join(d.Lines(), "\n")
}

// lineHunk returns the first differing hunk between two long strings, or nil
// when both are short enough to print whole.
func lineHunk(actual, expected string) []string {
	a := strings.Split(actual, "\n")
	e := strings.Split(expected, "\n")
	if len(a) < hunkMinLines && len(e) < hunkMinLines {
		return nil
	}

	groups := difflib.NewMatcher(a, e).GetGroupedOpCodes(hunkContext)
	if len(groups) == 0 {
		return nil
	}

	var out []string
	for _, op := range groups[0] {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "  "+line)
			}
		case 'd':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
			}
		case 'i':
			for _, line := range e[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		case 'r':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
			}
			for _, line := range e[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		}
	}
	return out
}
