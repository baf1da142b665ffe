package aqa

import (
	"context"
	"errors"
	"fmt"

	"github.com/aqatest/aqa/pkg/equal"
	"github.com/aqatest/aqa/pkg/report"
)

// NonErrorPrefix starts the message of a failure caused by a panic whose
// value is not an error.
const NonErrorPrefix = "Warning: a non-error value was thrown, stack and location could not be determined: "

// FailureKind classifies why a test or hook failed.
type FailureKind int

const (
	FailureAssertion  FailureKind = iota // an assertion did not hold
	FailureComparison                    // user code panicked inside DeepEqual
	FailureHook                          // a before or after hook failed
	FailureNonError                      // panic with a value that is not an error
	FailureError                         // panic with an error value
	FailureTimeout                       // the run context expired
)

func (k FailureKind) String() string {
	switch k {
	case FailureAssertion:
		return "assertion"
	case FailureComparison:
		return "comparison"
	case FailureHook:
		return "hook"
	case FailureNonError:
		return "non-error"
	case FailureError:
		return "error"
	case FailureTimeout:
		return "timeout"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Failure describes a failed test or hook.
type Failure struct {
	Kind    FailureKind
	Message string
	Cause   any
}

func (f *Failure) Error() string {
	return f.Message
}

func toFailure(r any) *Failure {
	switch v := r.(type) {
	case *AssertionError:
		return &Failure{Kind: FailureAssertion, Message: v.Message, Cause: v}
	case *equal.ComparisonError:
		return &Failure{Kind: FailureComparison, Message: v.Error(), Cause: v}
	case error:
		if errors.Is(v, context.DeadlineExceeded) || errors.Is(v, context.Canceled) {
			return &Failure{Kind: FailureTimeout, Message: v.Error(), Cause: v}
		}
		return &Failure{Kind: FailureError, Message: v.Error(), Cause: v}
	}
	return &Failure{Kind: FailureNonError, Message: NonErrorPrefix + fmt.Sprint(r), Cause: r}
}

// invoke runs fn and converts a panic into a Failure.
func invoke(fn TestFunc, t *T) (failure *Failure) {
	defer func() {
		if r := recover(); r != nil {
			failure = toFailure(r)
		}
	}()
	fn(t)
	return nil
}

// runChain runs fns in order and stops at the first failure.
func runChain(fns []TestFunc, t *T) *Failure {
	for _, fn := range fns {
		if f := invoke(fn, t); f != nil {
			return f
		}
	}
	return nil
}

// Failures returns the failures recorded by Run, in execution order.
func (s *Suite) Failures() []*Failure {
	return s.failures
}

func hookName(kind string, i, n int) string {
	if n > 1 {
		return fmt.Sprintf("%s #%d", kind, i+1)
	}
	return kind
}

// Run executes the registered hooks and tests once and returns their
// results. Registration is closed from the first call on.
func (s *Suite) Run(ctx context.Context) *report.TestFileResult {
	if s.state != stateRegistering {
		panic("aqa: Run called more than once")
	}
	s.state = stateRunning
	defer func() { s.state = stateDone }()

	start := s.now()
	result := &report.TestFileResult{Name: s.name, StartTime: start}

	if s.skipFile {
		s.skipAll(result)
		result.Duration = s.now().Sub(start)
		return result
	}

	beforeFailed := false
	for i, fn := range s.before {
		tc := s.runEntry(ctx, hookName("before", i, len(s.before)), []TestFunc{fn}, true)
		result.Add(tc)
		if tc.Failed() {
			beforeFailed = true
		}
	}

	for _, test := range s.tests {
		switch {
		case s.hasSolo && !test.solo:
			result.Add(s.skipEntry(test.name, SoloSkipReason))
		case test.skip:
			result.Add(s.skipEntry(test.name, SkipReason))
		case beforeFailed:
			result.Add(s.skipEntry(test.name, BeforeFailedReason))
		default:
			chain := make([]TestFunc, 0, len(s.beforeEach)+1+len(s.afterEach))
			chain = append(chain, s.beforeEach...)
			chain = append(chain, test.fn)
			chain = append(chain, s.afterEach...)
			tc := s.runEntry(ctx, test.name, chain, false)
			if tc.Success {
				s.passedTests++
			}
			result.Add(tc)
		}
	}

	for i, fn := range s.after {
		result.Add(s.runEntry(ctx, hookName("after", i, len(s.after)), []TestFunc{fn}, true))
	}

	result.Duration = s.now().Sub(start)
	return result
}

func (s *Suite) skipAll(result *report.TestFileResult) {
	for i := range s.before {
		result.Add(s.skipHook(hookName("before", i, len(s.before))))
	}
	for _, test := range s.tests {
		result.Add(s.skipEntry(test.name, s.skipReason))
	}
	for i := range s.after {
		result.Add(s.skipHook(hookName("after", i, len(s.after))))
	}
}

func (s *Suite) skipHook(name string) report.TestCaseResult {
	s.out.TestSkipped(name, s.skipReason)
	return report.TestCaseResult{
		Name:        name,
		StartTime:   s.now(),
		Skipped:     true,
		Success:     true,
		SkipMessage: s.skipReason,
	}
}

func (s *Suite) skipEntry(name, reason string) report.TestCaseResult {
	s.skipped++
	s.out.TestSkipped(name, reason)
	return report.TestCaseResult{
		Name:        name,
		StartTime:   s.now(),
		Skipped:     true,
		Success:     true,
		SkipMessage: reason,
	}
}

// runEntry runs one test chain or hook with a fresh T and reports it.
func (s *Suite) runEntry(ctx context.Context, name string, chain []TestFunc, hook bool) report.TestCaseResult {
	t := newT(ctx, s, name)
	s.out.TestStart(name)

	start := s.now()
	failure := runChain(chain, t)
	t.finish()
	duration := s.now().Sub(start)

	s.out.LogGroup(name, t.logs)

	tc := report.TestCaseResult{
		Name:      name,
		StartTime: start,
		Duration:  duration,
		Success:   failure == nil,
	}
	if failure != nil {
		if hook {
			failure = &Failure{Kind: FailureHook, Message: failure.Message, Cause: failure}
		}
		tc.FailureMessage = failure.Message
		s.failures = append(s.failures, failure)
		s.out.TestFailed(name, failure.Message)
		return tc
	}
	s.out.TestPassed(name, duration)
	return tc
}
