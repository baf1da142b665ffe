package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteTAP writes r as a TAP version 13 stream. Failure messages are
// attached as YAML diagnostic blocks.
func WriteTAP(w io.Writer, r *TestFileResult) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "TAP version 13")
	fmt.Fprintf(bw, "1..%d\n", len(r.TestCases))

	for i, tc := range r.TestCases {
		status := "ok"
		if tc.Failed() {
			status = "not ok"
		}
		line := fmt.Sprintf("%s %d - %s", status, i+1, tapEscape(tc.Name))
		if tc.Skipped {
			line += " # SKIP " + tapEscape(tc.SkipMessage)
		}
		fmt.Fprintln(bw, line)

		if tc.Failed() {
			writeDiagnostic(bw, tc)
		}
	}

	fmt.Fprintf(bw, "# tests %d\n", r.NumTests)
	fmt.Fprintf(bw, "# pass %d\n", r.NumPassed())
	fmt.Fprintf(bw, "# fail %d\n", r.NumFailedTests)
	fmt.Fprintf(bw, "# duration_ms %d\n", r.Duration.Milliseconds())

	return bw.Flush()
}

func writeDiagnostic(w io.Writer, tc TestCaseResult) {
	fmt.Fprintln(w, "  ---")
	fmt.Fprintln(w, "  message: |-")
	for _, line := range strings.Split(tc.FailureMessage, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintf(w, "  duration_ms: %d\n", tc.Duration.Milliseconds())
	fmt.Fprintln(w, "  ...")
}

// tapEscape keeps a description on one line and stops "#" from starting a
// directive.
func tapEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "#", "\\#")
	return strings.ReplaceAll(s, "\n", " ")
}
