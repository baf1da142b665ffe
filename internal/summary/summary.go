// Package summary parses the summary-line protocol that aqa test processes
// follow: the last stdout line of a passing process reads
// "Ran N test(s) successfully!", the last stderr line of a failing one reads
// "N test(s) failed.".
package summary

import (
	"regexp"
	"strconv"
	"strings"
)

// FailedTest holds information about a single failed test.
type FailedTest struct {
	Name   string
	Reason string
}

// Counts holds the counts parsed from one test process.
type Counts struct {
	Passed      int
	Failed      int
	Skipped     int
	Parsed      bool // true if a summary line was found
	FailedTests []FailedTest
}

// Add adds another Counts to this one. Parsed is sticky: the aggregate is
// parsed if any part was.
func (c *Counts) Add(other *Counts) {
	if other == nil {
		return
	}
	c.Passed += other.Passed
	c.Failed += other.Failed
	c.Skipped += other.Skipped
	c.FailedTests = append(c.FailedTests, other.FailedTests...)
	if other.Parsed {
		c.Parsed = true
	}
}

// Parser extracts counts from a finished test process.
type Parser interface {
	// Parse classifies the output of a process that exited with exitCode.
	Parse(exitCode int, stdout, stderr string) Counts
	// Name returns the name of the parser.
	Name() string
}

var (
	countRegex   = regexp.MustCompile(`(\d+) test`)
	skippedRegex = regexp.MustCompile(`\((\d+) skipped\)`)
	ansiRegex    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	failedRegex  = regexp.MustCompile(`^✗ FAILED: (".*")$`)
	// go run reports the child's non-zero status after the child's output.
	trailerRegex = regexp.MustCompile(`^exit status \d+$`)
)

// AqaParser parses the output of aqa test processes.
type AqaParser struct{}

// Name returns the parser name.
func (p *AqaParser) Name() string {
	return "aqa"
}

// Parse reads the success count from the last stdout line when exitCode is
// zero and the failure count from the last stderr line otherwise. A
// non-zero exit without a summary line leaves Parsed false.
func (p *AqaParser) Parse(exitCode int, stdout, stderr string) Counts {
	var counts Counts
	if exitCode == 0 {
		line := LastLine(stdout)
		if n, ok := Count(line); ok {
			counts.Passed = n
			counts.Parsed = true
		}
		counts.Skipped = Skipped(line)
		return counts
	}

	stderr = TrimRunnerTrailer(stderr)
	if n, ok := Count(LastLine(stderr)); ok {
		counts.Failed = n
		counts.Parsed = true
		counts.FailedTests = ParseFailures(stderr)
	}
	return counts
}

// Count extracts N from a line containing "N test".
func Count(line string) (int, bool) {
	m := countRegex.FindStringSubmatch(StripANSI(line))
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Skipped extracts M from a "(M skipped)" suffix, or 0.
func Skipped(line string) int {
	m := skippedRegex.FindStringSubmatch(StripANSI(line))
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// LastLine returns the last non-blank line of s.
func LastLine(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[i+1:], "\r")
	}
	return s
}

// TrimRunnerTrailer removes the status lines a runner such as go run appends
// to the stderr of a failed child, so that the child's own last line is last
// again.
func TrimRunnerTrailer(s string) string {
	for {
		line := LastLine(s)
		if line == "" || !trailerRegex.MatchString(StripANSI(line)) {
			return s
		}
		s = WithoutLastLine(s)
	}
}

// WithoutLastLine returns s without its last non-blank line.
func WithoutLastLine(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[:i+1]
	}
	return ""
}

// StripANSI removes color escape sequences.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// ParseFailures collects the `✗ FAILED: "<name>"` blocks written to stderr,
// each followed by an "Error: <message>" section.
func ParseFailures(stderr string) []FailedTest {
	var failures []FailedTest
	var current *FailedTest

	flush := func() {
		if current != nil {
			current.Reason = strings.TrimRight(current.Reason, "\n")
			failures = append(failures, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(StripANSI(stderr), "\n") {
		if m := failedRegex.FindStringSubmatch(line); m != nil {
			flush()
			name, err := strconv.Unquote(m[1])
			if err != nil {
				name = strings.Trim(m[1], `"`)
			}
			current = &FailedTest{Name: name}
			continue
		}
		if current == nil {
			continue
		}
		if current.Reason == "" {
			current.Reason = strings.TrimPrefix(line, "Error: ") + "\n"
			continue
		}
		if _, ok := Count(line); ok && strings.HasSuffix(line, "failed.") {
			break
		}
		current.Reason += line + "\n"
	}
	flush()
	return failures
}
