package aqa

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/aqatest/aqa/internal/output"
	"github.com/aqatest/aqa/pkg/report"
)

// Environment variables set by the aqa command for each test process.
const (
	EnvFile              = "AQA_FILE"
	EnvVerbose           = "AQA_VERBOSE"
	EnvReporter          = "AQA_REPORTER"
	EnvReporterOutputDir = "AQA_REPORTER_OUTPUT_DIR"
	EnvColor             = "AQA_COLOR"
)

// Skip reasons reported for tests that did not run.
const (
	DefaultSkipFileReason = "file skipped"
	SkipReason            = "skipped"
	SoloSkipReason        = "presence of solo tests"
	BeforeFailedReason    = "before-tests failed"
)

// TestFunc is the body of a test or hook.
type TestFunc func(t *T)

type testCase struct {
	name string
	fn   TestFunc
	solo bool
	skip bool
}

type state int

const (
	stateRegistering state = iota
	stateRunning
	stateDone
)

// Suite collects the tests and hooks of one test file and runs them.
type Suite struct {
	name      string
	out       *output.Writer
	console   io.Writer
	process   bool // console is the process stdout
	reporter  report.Reporter
	outputDir string
	now       func() time.Time

	tests      []testCase
	names      map[string]bool
	hasSolo    bool
	before     []TestFunc
	after      []TestFunc
	beforeEach []TestFunc
	afterEach  []TestFunc

	skipFile   bool
	skipReason string

	state       state
	passedTests int
	skipped     int
	failures    []*Failure
}

// Option configures a Suite.
type Option func(*Suite)

// WithName sets the file name used in reports.
func WithName(name string) Option {
	return func(s *Suite) { s.name = name }
}

// WithOutput redirects console output, narration and failures.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Suite) {
		verbose := s.out.Verbose()
		s.out = output.NewWithWriters(stdout, stderr, false)
		s.out.SetVerbose(verbose)
		s.console = stdout
		s.process = false
	}
}

// WithVerbose enables per-test narration.
func WithVerbose(verbose bool) Option {
	return func(s *Suite) { s.out.SetVerbose(verbose) }
}

// WithReporter exports results as TAP or JUnit into outputDir.
func WithReporter(r report.Reporter, outputDir string) Option {
	return func(s *Suite) {
		s.reporter = r
		if outputDir != "" {
			s.outputDir = outputDir
		}
	}
}

// WithClock replaces the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(s *Suite) { s.now = now }
}

// New creates a Suite configured from the environment exported by the aqa
// command, then from opts.
func New(opts ...Option) *Suite {
	s := &Suite{
		name:      callerFile(2),
		out:       output.New(),
		console:   os.Stdout,
		process:   true,
		outputDir: report.DefaultOutputDir,
		now:       time.Now,
		names:     make(map[string]bool),
	}
	s.applyEnv()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Suite) applyEnv() {
	if v := os.Getenv(EnvFile); v != "" {
		s.name = v
	}
	if v, ok := os.LookupEnv(EnvVerbose); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.out.SetVerbose(b)
		}
	}
	if v := os.Getenv(EnvReporter); v != "" {
		r, err := report.ParseReporter(v)
		if err != nil {
			s.out.Warning("%v", err)
		}
		s.reporter = r
	}
	if v := os.Getenv(EnvReporterOutputDir); v != "" {
		s.outputDir = v
	}
}

// callerFile returns the source file skip frames up, relative to the working
// directory when possible.
func callerFile(skip int) string {
	_, file, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, file); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(file)
}

// Name returns the file name used in reports.
func (s *Suite) Name() string {
	return s.name
}

func (s *Suite) mustRegister(method string) {
	if s.state != stateRegistering {
		panic("aqa: " + method + " called after the suite started running")
	}
}

func (s *Suite) add(method string, tc testCase) {
	s.mustRegister(method)
	if s.names[tc.name] {
		s.out.Warning("duplicate test name %q", tc.name)
	}
	s.names[tc.name] = true
	if tc.solo {
		s.hasSolo = true
	}
	s.tests = append(s.tests, tc)
}

// Test registers a test.
func (s *Suite) Test(name string, fn TestFunc) {
	s.add("Test", testCase{name: name, fn: fn})
}

// Skip registers a test that is reported as skipped without running.
func (s *Suite) Skip(name string, fn TestFunc) {
	s.add("Skip", testCase{name: name, fn: fn, skip: true})
}

// Solo registers a test and skips every test not registered with Solo.
func (s *Suite) Solo(name string, fn TestFunc) {
	s.add("Solo", testCase{name: name, fn: fn, solo: true})
}

// SkipFile marks every test and hook of the file as skipped.
func (s *Suite) SkipFile(reason ...string) {
	s.mustRegister("SkipFile")
	s.skipFile = true
	s.skipReason = strings.Join(reason, " ")
	if s.skipReason == "" {
		s.skipReason = DefaultSkipFileReason
	}
}

// Before registers a hook that runs once before all tests.
func (s *Suite) Before(fn TestFunc) {
	s.mustRegister("Before")
	s.before = append(s.before, fn)
}

// After registers a hook that runs once after all tests, even when tests or
// before hooks failed.
func (s *Suite) After(fn TestFunc) {
	s.mustRegister("After")
	s.after = append(s.after, fn)
}

// BeforeEach registers a hook that runs before every test body.
func (s *Suite) BeforeEach(fn TestFunc) {
	s.mustRegister("BeforeEach")
	s.beforeEach = append(s.beforeEach, fn)
}

// AfterEach registers a hook that runs after every test body that did not
// fail earlier in its chain.
func (s *Suite) AfterEach(fn TestFunc) {
	s.mustRegister("AfterEach")
	s.afterEach = append(s.afterEach, fn)
}
