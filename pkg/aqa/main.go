package aqa

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aqatest/aqa/pkg/report"
)

// Main runs the suite with a context cancelled on SIGINT or SIGTERM, writes
// the console summary and the configured report file, and exits the process
// with status 0 when nothing failed and 1 otherwise.
func (s *Suite) Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := s.Execute(ctx)
	stop()
	os.Exit(code)
}

// Execute runs the suite, exports the results and prints the summary line.
// It returns the process exit code.
func (s *Suite) Execute(ctx context.Context) int {
	result := s.Run(ctx)

	path, err := report.Export(s.reporter, s.outputDir, result)
	switch {
	case err != nil:
		s.out.Warning("could not write %s report: %v", s.reporter, err)
	case path != "":
		s.out.Info("Report written to %s", path)
	}

	s.writeSummary(result)
	if result.Success() {
		return 0
	}
	return 1
}

// writeSummary prints the line the aqa command parses: on stdout when every
// entry passed, on stderr otherwise. It must be the last line of its stream.
func (s *Suite) writeSummary(result *report.TestFileResult) {
	if !result.Success() {
		s.out.Errorln("%d test(s) failed.", result.NumFailedTests)
		return
	}
	line := fmt.Sprintf("Ran %d test(s) successfully!", s.passedTests)
	if s.skipped > 0 {
		line += fmt.Sprintf(" (%d skipped)", s.skipped)
	}
	s.out.Println("%s", line)
}
