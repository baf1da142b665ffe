// Package report defines the per-file test results produced by a test file
// process and writes them as console summaries, TAP streams or JUnit XML.
package report

import "time"

// TestCaseResult is the outcome of one test or one before/after hook.
type TestCaseResult struct {
	Name           string
	StartTime      time.Time
	Duration       time.Duration
	Skipped        bool
	Success        bool
	FailureMessage string
	SkipMessage    string
}

// Failed reports whether the entry ran and failed.
func (r TestCaseResult) Failed() bool {
	return !r.Skipped && !r.Success
}

// TestFileResult aggregates the results of one test file.
type TestFileResult struct {
	Name           string
	StartTime      time.Time
	Duration       time.Duration
	NumTests       int
	NumFailedTests int
	TestCases      []TestCaseResult
}

// Add appends a case and updates the counters.
func (r *TestFileResult) Add(tc TestCaseResult) {
	r.TestCases = append(r.TestCases, tc)
	r.NumTests++
	if tc.Failed() {
		r.NumFailedTests++
	}
}

// NumSkipped counts skipped entries.
func (r *TestFileResult) NumSkipped() int {
	n := 0
	for _, tc := range r.TestCases {
		if tc.Skipped {
			n++
		}
	}
	return n
}

// NumPassed counts entries that ran and succeeded.
func (r *TestFileResult) NumPassed() int {
	return r.NumTests - r.NumFailedTests - r.NumSkipped()
}

// Success reports whether no entry failed.
func (r *TestFileResult) Success() bool {
	return r.NumFailedTests == 0
}
