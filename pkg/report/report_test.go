package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *TestFileResult {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := &TestFileResult{
		Name:      "tests/math.test.go",
		StartTime: start,
		Duration:  12 * time.Millisecond,
	}
	r.Add(TestCaseResult{Name: "before", StartTime: start, Duration: time.Millisecond, Success: true})
	r.Add(TestCaseResult{Name: "adds", StartTime: start, Duration: 2 * time.Millisecond, Success: true})
	r.Add(TestCaseResult{
		Name:           "compares objects",
		StartTime:      start,
		Duration:       3 * time.Millisecond,
		FailureMessage: "Difference found at:\nPath: a\n- 1\n+ 2",
	})
	r.Add(TestCaseResult{Name: "divides", StartTime: start, Skipped: true, Success: true, SkipMessage: "skipped"})
	return r
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestTestFileResult_Counts(t *testing.T) {
	t.Parallel()

	r := sampleResult()
	assert.Equal(t, 4, r.NumTests)
	assert.Equal(t, 1, r.NumFailedTests)
	assert.Equal(t, 1, r.NumSkipped())
	assert.Equal(t, 2, r.NumPassed())
	assert.False(t, r.Success())
}

func TestWriteTAP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTAP(&buf, sampleResult()))

	newGoldie(t).Assert(t, "math.tap", buf.Bytes())
}

func TestWriteTAP_EscapesDescriptions(t *testing.T) {
	t.Parallel()

	r := &TestFileResult{Name: "x"}
	r.Add(TestCaseResult{Name: "issue #12\nsecond line", Success: true})

	var buf bytes.Buffer
	require.NoError(t, WriteTAP(&buf, r))
	assert.Contains(t, buf.String(), "ok 1 - issue \\#12 second line\n")
}

func TestWriteJUnit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, sampleResult()))

	newGoldie(t).Assert(t, "math.junit", buf.Bytes())
}

func TestWriteJUnit_EscapesAttributes(t *testing.T) {
	t.Parallel()

	r := &TestFileResult{Name: "a&b"}
	r.Add(TestCaseResult{Name: `says "hi"`, FailureMessage: "Expected 1, got <nil>"})

	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, r))

	out := buf.String()
	assert.Contains(t, out, `name="a&amp;b"`)
	assert.Contains(t, out, `name="says &#34;hi&#34;"`)
	assert.Contains(t, out, `message="Expected 1, got &lt;nil&gt;"`)
}

func TestParseReporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Reporter
		wantErr bool
	}{
		{"", ReporterNone, false},
		{"tap", ReporterTAP, false},
		{" JUnit ", ReporterJUnit, false},
		{"xml", ReporterNone, true},
	}

	for _, tt := range tests {
		got, err := ParseReporter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseReporter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseReporter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dir      string
		file     string
		reporter Reporter
		want     string
	}{
		{"nested junit", "out", "tests/math.test.go", ReporterJUnit, filepath.Join("out", "test-result-tests-math.test.go.xml")},
		{"tap", "out", "a.test.go", ReporterTAP, filepath.Join("out", "test-result-a.test.go.tap")},
		{"default dir", "", "a.test.go", ReporterJUnit, filepath.Join(DefaultOutputDir, "test-result-a.test.go.xml")},
		{"dot prefix", "out", "./x/y z.test.go", ReporterJUnit, filepath.Join("out", "test-result-x-y-z.test.go.xml")},
		{"decomposed unicode", "out", "cafe\u0301.test.go", ReporterTAP, filepath.Join("out", "test-result-caf-.test.go.tap")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FileName(tt.dir, tt.file, tt.reporter); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := Export(ReporterJUnit, dir, sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test-result-tests-math.test.go.xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	path, err = Export(ReporterNone, dir, sampleResult())
	require.NoError(t, err)
	assert.Empty(t, path)
}
