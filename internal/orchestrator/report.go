package orchestrator

import (
	"strings"

	"github.com/aqatest/aqa/internal/output"
	"github.com/aqatest/aqa/internal/summary"
)

// Report renders the console report of a run: the relevant output of each
// file, then either the success line or every failing file followed by the
// failure count.
func Report(out *output.Writer, s *Summary) {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		text := relevantOutput(t)
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.FileHeader(t.Name)
		out.Block(strings.TrimSpace(text))
	}

	out.Println("")
	if s.Success() {
		out.FinalSuccess(s.Elapsed, "Ran %d test(s) successfully!", s.Passed)
		return
	}

	for i := range s.Tasks {
		t := &s.Tasks[i]
		if !t.Failed() {
			continue
		}
		if t.Fatal {
			out.FatalError(t.Stderr)
		} else {
			out.Println("   %s", out.Gray(t.Name+":"))
			out.Block(summary.WithoutLastLine(t.Stderr))
		}
		out.Println(" ")
	}
	out.FinalFailure(s.Elapsed, "%d test(s) failed.", s.Failed)
}

// relevantOutput is stdout for failing files, and stdout without the summary
// line plus stderr for passing ones.
func relevantOutput(t *TaskResult) string {
	if t.Failed() {
		return t.Stdout
	}
	if strings.TrimSpace(t.Stderr) == "" {
		return summary.WithoutLastLine(t.Stdout)
	}
	return summary.WithoutLastLine(t.Stdout) + "\n" + t.Stderr
}
