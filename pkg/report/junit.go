package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Time      string          `xml:"time,attr"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",cdata"`
}

type junitSkipped struct {
	Reason string `xml:",chardata"`
}

// WriteJUnit writes the given file results as a JUnit XML document with one
// testsuite per file.
func WriteJUnit(w io.Writer, results ...*TestFileResult) error {
	doc := junitTestSuites{}
	for _, r := range results {
		doc.Suites = append(doc.Suites, junitSuite(r))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode junit report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func junitSuite(r *TestFileResult) junitTestSuite {
	suite := junitTestSuite{
		Name:      r.Name,
		Tests:     r.NumTests,
		Failures:  r.NumFailedTests,
		Skipped:   r.NumSkipped(),
		Timestamp: r.StartTime.UTC().Format("2006-01-02T15:04:05"),
		Time:      seconds(r.Duration),
	}
	for _, tc := range r.TestCases {
		c := junitTestCase{
			Name:      tc.Name,
			ClassName: r.Name,
			Time:      seconds(tc.Duration),
		}
		switch {
		case tc.Skipped:
			c.Skipped = &junitSkipped{Reason: tc.SkipMessage}
		case !tc.Success:
			c.Failure = &junitFailure{Message: firstLine(tc.FailureMessage), Body: tc.FailureMessage}
		}
		suite.Cases = append(suite.Cases, c)
	}
	return suite
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
