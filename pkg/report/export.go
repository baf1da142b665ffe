package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reporter selects an export format.
type Reporter string

const (
	ReporterNone  Reporter = ""
	ReporterTAP   Reporter = "tap"
	ReporterJUnit Reporter = "junit"
)

// DefaultOutputDir is where report files go when no directory is configured.
const DefaultOutputDir = "test-results"

// ParseReporter validates a reporter name.
func ParseReporter(s string) (Reporter, error) {
	switch r := Reporter(strings.ToLower(strings.TrimSpace(s))); r {
	case ReporterNone, ReporterTAP, ReporterJUnit:
		return r, nil
	}
	return ReporterNone, fmt.Errorf("unknown reporter %q (expected tap or junit)", s)
}

// Extension returns the file extension used by the reporter.
func (r Reporter) Extension() string {
	switch r {
	case ReporterTAP:
		return ".tap"
	case ReporterJUnit:
		return ".xml"
	}
	return ""
}

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9._]+`)

// FileName returns the report path for a test file:
// <outputDir>/test-result-<normalized path><ext>.
func FileName(outputDir, testFile string, r Reporter) string {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	name := norm.NFC.String(filepath.ToSlash(filepath.Clean(testFile)))
	name = unsafeRun.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	return filepath.Join(outputDir, "test-result-"+name+r.Extension())
}

// Export writes result in the reporter's format and returns the file path.
// ReporterNone writes nothing.
func Export(r Reporter, outputDir string, result *TestFileResult) (string, error) {
	if r == ReporterNone {
		return "", nil
	}

	var buf bytes.Buffer
	var err error
	switch r {
	case ReporterTAP:
		err = WriteTAP(&buf, result)
	case ReporterJUnit:
		err = WriteJUnit(&buf, result)
	default:
		return "", fmt.Errorf("unknown reporter %q", string(r))
	}
	if err != nil {
		return "", err
	}

	path := FileName(outputDir, result.Name, r)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
