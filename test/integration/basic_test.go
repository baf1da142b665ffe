// Package integration runs the aqa command against the projects under
// test/fixtures.
package integration

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aqatest/aqa/internal/cli"
	"github.com/aqatest/aqa/internal/config"
	"github.com/aqatest/aqa/internal/output"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

// requireTool skips the test when name is not on PATH. Fixtures compiled
// with the Go toolchain are also skipped in short mode.
func requireTool(t *testing.T, name string) {
	t.Helper()
	if name == "go" && testing.Short() {
		t.Skip("skipping go fixtures in short mode")
	}
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// clearEnv empties every AQA_* variable the command reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{config.EnvVerbose, config.EnvConcurrency, config.EnvReporter,
		config.EnvReporterOutputDir, config.EnvTimeout, config.EnvMaxWorkers} {
		t.Setenv(name, "")
	}
}

// execute runs the aqa command from the given fixture directory.
func execute(t *testing.T, fixture string, args ...string) (int, string) {
	t.Helper()
	t.Chdir(filepath.Join(fixturesDir(), fixture))

	var buf bytes.Buffer
	code := cli.Execute(context.Background(), args, output.NewWithWriters(&buf, &buf, false))
	return code, buf.String()
}

// runAqa runs the aqa command from the given fixture directory with a clean
// AQA_* environment.
func runAqa(t *testing.T, fixture string, args ...string) (int, string) {
	t.Helper()
	clearEnv(t)
	return execute(t, fixture, args...)
}

func TestGoSuite(t *testing.T) {
	requireTool(t, "go")

	code, out := runAqa(t, "go-suite")
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "[greet.test.go]\n")
	assert.Contains(t, out, "greet output is plain text\n")
	assert.Contains(t, out, " Ran 6 test(s) successfully!")
}

func TestGoSuite_SingleFile(t *testing.T) {
	requireTool(t, "go")

	code, out := runAqa(t, "go-suite", "math.test.go")
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, " Ran 3 test(s) successfully!")
	assert.NotContains(t, out, "greet.test.go")
}

func TestGoSuite_Verbose(t *testing.T) {
	requireTool(t, "go")

	code, out := runAqa(t, "go-suite", "greet.test.go", "-v")
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "Running tests for: greet.test.go")
	assert.Contains(t, out, "mock calls: 1")
}
