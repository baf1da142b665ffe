package aqa

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/aqatest/aqa/pkg/equal"
)

// nearEpsilon absorbs floating point noise in Near and NotNear.
const nearEpsilon = 1e-12

// AssertionError is raised, as a panic, by a failing assertion. The executor
// recovers it and records the test as failed.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// T is the per-test assertion surface. A fresh T is passed to each test
// and shared by the beforeEach and afterEach hooks of that test.
type T struct {
	ctx     context.Context
	suite   *Suite
	name    string
	console io.Writer
	logs    []string
	restore []func()
}

func newT(ctx context.Context, s *Suite, name string) *T {
	return &T{
		ctx:     ctx,
		suite:   s,
		name:    name,
		console: s.console,
	}
}

// Name returns the name of the running test or hook.
func (t *T) Name() string {
	return t.name
}

// Context returns the context the suite is running with.
func (t *T) Context() context.Context {
	return t.ctx
}

// Console returns the writer for test output. It discards everything after
// DisableLogging.
func (t *T) Console() io.Writer {
	return t.console
}

// Printf writes formatted output to the console.
func (t *T) Printf(format string, args ...any) {
	fmt.Fprintf(t.console, format, args...)
}

// Println writes a line to the console.
func (t *T) Println(args ...any) {
	fmt.Fprintln(t.console, args...)
}

// Log buffers a line that is printed under "[log] <name>" once the test
// finishes, whether it passed or not.
func (t *T) Log(args ...any) {
	t.logs = append(t.logs, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

// Logf is Log with a format string.
func (t *T) Logf(format string, args ...any) {
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

// DisableLogging silences console output for the rest of the test. When the
// suite writes to the process stdout, os.Stdout and the standard logger are
// silenced too. Everything is restored when the test finishes.
func (t *T) DisableLogging() {
	if t.console == io.Discard {
		return
	}
	t.console = io.Discard

	prevLog := log.Writer()
	log.SetOutput(io.Discard)
	t.restore = append(t.restore, func() { log.SetOutput(prevLog) })

	if !t.suite.process {
		return
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return
	}
	prevStdout := os.Stdout
	os.Stdout = devNull
	t.restore = append(t.restore, func() {
		os.Stdout = prevStdout
		devNull.Close()
	})
}

// finish undoes DisableLogging in reverse order.
func (t *T) finish() {
	for i := len(t.restore) - 1; i >= 0; i-- {
		t.restore[i]()
	}
	t.restore = nil
	t.console = t.suite.console
}

// Fail aborts the test with the given message.
func (t *T) Fail(message string, msgAndArgs ...any) {
	t.fail(message, msgAndArgs)
}

func (t *T) fail(message string, msgAndArgs []any) {
	if extra := messageFromArgs(msgAndArgs); extra != "" {
		message += "\n" + extra
	}
	panic(&AssertionError{Message: message})
}

// messageFromArgs renders the optional trailing message of an assertion.
// A leading string is used as a format when more arguments follow.
func messageFromArgs(msgAndArgs []any) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprint(msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}

// Is asserts that actual and expected are the same value: primitives by
// value, references by identity.
func (t *T) Is(actual, expected any, msgAndArgs ...any) {
	if !equal.Same(actual, expected) {
		t.fail(fmt.Sprintf("Expected %s, got %s", equal.Format(expected), equal.Format(actual)), msgAndArgs)
	}
}

// Not asserts that actual and expected are not the same value.
func (t *T) Not(actual, expected any, msgAndArgs ...any) {
	if equal.Same(actual, expected) {
		t.fail(fmt.Sprintf("Expected something other than %s, but got %s", equal.Format(expected), equal.Format(actual)), msgAndArgs)
	}
}

// Near asserts that |actual-expected| <= |delta|.
func (t *T) Near(actual, expected, delta float64, msgAndArgs ...any) {
	diff := math.Abs(actual - expected)
	if !(diff <= math.Abs(delta)+nearEpsilon) {
		t.fail(fmt.Sprintf("Expected %v to be within %v of %v, difference was %v", actual, delta, expected, diff), msgAndArgs)
	}
}

// NotNear asserts that |actual-expected| > |delta|.
func (t *T) NotNear(actual, expected, delta float64, msgAndArgs ...any) {
	diff := math.Abs(actual - expected)
	if diff <= math.Abs(delta)+nearEpsilon {
		t.fail(fmt.Sprintf("Expected %v to not be within %v of %v", actual, delta, expected), msgAndArgs)
	}
}

// DeepEqual asserts structural equality. Ignore and IgnoreExtra may appear
// in expected.
func (t *T) DeepEqual(actual, expected any, msgAndArgs ...any) {
	diff, err := equal.Compare(actual, expected)
	if err != nil {
		panic(err)
	}
	if diff != nil {
		t.fail(diff.String(), msgAndArgs)
	}
}

// NotDeepEqual asserts that some difference exists.
func (t *T) NotDeepEqual(actual, expected any, msgAndArgs ...any) {
	diff, err := equal.Compare(actual, expected)
	if err != nil {
		panic(err)
	}
	if diff == nil {
		t.fail("No difference between actual and expected.", msgAndArgs)
	}
}

// True asserts that value is true.
func (t *T) True(value bool, msgAndArgs ...any) {
	if !value {
		t.fail("Expected true, got false", msgAndArgs)
	}
}

// False asserts that value is false.
func (t *T) False(value bool, msgAndArgs ...any) {
	if value {
		t.fail("Expected false, got true", msgAndArgs)
	}
}
