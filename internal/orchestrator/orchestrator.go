// Package orchestrator runs test files in isolated processes and aggregates
// their results.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/aqatest/aqa/internal/config"
	"github.com/aqatest/aqa/internal/output"
	"github.com/aqatest/aqa/internal/summary"
	"github.com/aqatest/aqa/pkg/aqa"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been killed, e.g. when a grandchild inherited them.
const waitDelay = 2 * time.Second

// TaskResult is the outcome of one test file process.
type TaskResult struct {
	Name       string // root-relative path of the test file
	ExitCode   int
	Stdout     string
	Stderr     string
	Duration   time.Duration
	TimedOut   bool
	Fatal      bool // the process failed without a parsable summary line
	NumOk      int
	NumFailed  int
	NumSkipped int
	Failures   []summary.FailedTest
	Err        error // start, lookup or cancellation error
}

// Failed reports whether the task contributes failures.
func (r *TaskResult) Failed() bool {
	return r.Fatal || r.NumFailed > 0 || r.ExitCode != 0
}

// Summary aggregates the results of one run.
type Summary struct {
	Tasks   []TaskResult
	Passed  int
	Failed  int
	Skipped int
	Elapsed time.Duration
}

// Success reports whether every task passed.
func (s *Summary) Success() bool {
	for i := range s.Tasks {
		if s.Tasks[i].Failed() {
			return false
		}
	}
	return s.Failed == 0
}

// Orchestrator spawns one process per test file.
type Orchestrator struct {
	settings *config.Settings
	out      *output.Writer
	parser   summary.Parser
	lookPath func(string) (string, error)
	now      func() time.Time
}

// New creates an Orchestrator for the given settings.
func New(settings *config.Settings, out *output.Writer) *Orchestrator {
	return &Orchestrator{
		settings: settings,
		out:      out,
		parser:   &summary.AqaParser{},
		lookPath: exec.LookPath,
		now:      time.Now,
	}
}

// Run executes files, root-relative paths, and returns the aggregated summary.
// Results keep the order of files regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context, files []string) *Summary {
	start := o.now()
	o.out.Info("Running tests for: %s", joinNames(files))

	results := make([]TaskResult, len(files))
	if o.settings.Concurrency && len(files) > 1 {
		o.runConcurrent(ctx, files, results)
	} else {
		for i, file := range files {
			results[i] = o.runTask(ctx, file)
		}
	}

	s := &Summary{Tasks: results}
	for i := range results {
		s.Passed += results[i].NumOk
		s.Failed += results[i].NumFailed
		s.Skipped += results[i].NumSkipped
	}
	s.Elapsed = o.now().Sub(start)
	return s
}

func (o *Orchestrator) runConcurrent(ctx context.Context, files []string, results []TaskResult) {
	var sem *semaphore.Weighted
	if o.settings.MaxWorkers > 0 {
		sem = semaphore.NewWeighted(int64(o.settings.MaxWorkers))
	}

	var g errgroup.Group
	for i, file := range files {
		g.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					results[i] = cancelled(file, err)
					return nil
				}
				defer sem.Release(1)
			}
			results[i] = o.runTask(ctx, file)
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) runTask(ctx context.Context, file string) TaskResult {
	if err := ctx.Err(); err != nil {
		return cancelled(file, err)
	}

	argv, ok := o.settings.Runner(file)
	if !ok {
		return fatal(file, fmt.Errorf("no runner configured for %q files", filepath.Ext(file)))
	}
	bin, err := o.lookPath(argv[0])
	if err != nil {
		return fatal(file, err)
	}

	timeout := o.settings.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, argv[1:]...), file)
	cmd := exec.CommandContext(taskCtx, bin, args...)
	cmd.Dir = o.settings.Root
	cmd.Env = append(os.Environ(), o.childEnv(file)...)
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := o.now()
	runErr := cmd.Run()
	result := TaskResult{
		Name:     filepath.ToSlash(file),
		Stdout:   stdout.String(),
		Stderr:   summary.TrimRunnerTrailer(stderr.String()),
		Duration: o.now().Sub(start),
	}

	switch {
	case runErr != nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.TimedOut = true
		result.Fatal = true
		result.ExitCode = -1
		result.NumFailed = 1
		result.Err = taskCtx.Err()
		result.Stderr = fmt.Sprintf("Timeout: %s did not finish within %s", result.Name, timeout)
		return result
	case runErr != nil && ctx.Err() != nil:
		r := cancelled(file, ctx.Err())
		r.Stdout, r.Duration = result.Stdout, result.Duration
		return r
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		r := fatal(file, runErr)
		r.Duration = result.Duration
		return r
	}

	o.classify(&result)
	return result
}

// classify turns exit code and output into counts.
func (o *Orchestrator) classify(r *TaskResult) {
	counts := o.parser.Parse(r.ExitCode, r.Stdout, r.Stderr)
	if r.ExitCode != 0 {
		if !counts.Parsed {
			r.Fatal = true
			r.NumFailed = 1
			return
		}
		r.NumFailed = counts.Failed
		r.Failures = counts.FailedTests
		return
	}

	if !counts.Parsed {
		o.out.Info("%s: no test summary found in output, counting 0 tests", r.Name)
	}
	r.NumOk = counts.Passed
	r.NumSkipped = counts.Skipped
}

func (o *Orchestrator) childEnv(file string) []string {
	s := o.settings
	return []string{
		aqa.EnvFile + "=" + filepath.ToSlash(file),
		aqa.EnvVerbose + "=" + strconv.FormatBool(s.Verbose),
		aqa.EnvReporter + "=" + string(s.Reporter),
		aqa.EnvReporterOutputDir + "=" + s.OutputPath(),
		aqa.EnvColor + "=" + strconv.FormatBool(o.out.Color()),
	}
}

func fatal(file string, err error) TaskResult {
	return TaskResult{
		Name:      filepath.ToSlash(file),
		ExitCode:  -1,
		Stderr:    err.Error(),
		Fatal:     true,
		NumFailed: 1,
		Err:       err,
	}
}

func cancelled(file string, err error) TaskResult {
	r := fatal(file, err)
	r.Stderr = fmt.Sprintf("%s was not completed: %v", filepath.ToSlash(file), err)
	return r
}

func joinNames(files []string) string {
	var b bytes.Buffer
	for i, f := range files {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(filepath.ToSlash(f))
	}
	return b.String()
}
