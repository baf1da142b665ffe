package aqa

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// PanicError carries a panic raised by a function under Throws or
// NotThrows.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ThrowsOption adds a check on the error caught by Throws. It returns a
// failure message, or "" when the error is acceptable.
type ThrowsOption func(err error) string

// InstanceOf requires the caught error to match E with errors.As.
func InstanceOf[E error]() ThrowsOption {
	return func(err error) string {
		var target E
		if errors.As(err, &target) {
			return ""
		}
		return fmt.Sprintf("Expected error to be an instance of '%s', got '%s'",
			reflect.TypeFor[E]().String(), errorTypeName(err))
	}
}

// ErrorIs requires the caught error to match target with errors.Is.
func ErrorIs(target error) ThrowsOption {
	return func(err error) string {
		if errors.Is(err, target) {
			return ""
		}
		return fmt.Sprintf("Expected error to match '%v', got '%v'", target, err)
	}
}

// MessageContains requires the caught error message to contain substr.
func MessageContains(substr string) ThrowsOption {
	return func(err error) string {
		if strings.Contains(err.Error(), substr) {
			return ""
		}
		return fmt.Sprintf("Expected error message to contain %q, got %q", substr, err.Error())
	}
}

// errorTypeName names the dynamic type of err, looking through PanicError.
func errorTypeName(err error) string {
	if pe, ok := err.(*PanicError); ok {
		return fmt.Sprintf("%T", pe.Value)
	}
	return fmt.Sprintf("%T", err)
}

// catch runs fn and returns its error, converting a panic into an error.
func catch(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

// Throws asserts that fn returns a non-nil error or panics, then applies
// opts. It returns the caught error.
func (t *T) Throws(fn func() error, opts ...ThrowsOption) error {
	return t.checkThrown(catch(fn), opts)
}

// NotThrows asserts that fn returns nil without panicking.
func (t *T) NotThrows(fn func() error, msgAndArgs ...any) {
	t.checkNotThrown(catch(fn), msgAndArgs)
}

// ThrowsAsync runs fn on its own goroutine, waits for it and asserts like
// Throws. It fails if the test context ends first.
func (t *T) ThrowsAsync(fn func(ctx context.Context) error, opts ...ThrowsOption) error {
	return t.checkThrown(t.await(fn), opts)
}

// NotThrowsAsync runs fn on its own goroutine, waits for it and asserts like
// NotThrows.
func (t *T) NotThrowsAsync(fn func(ctx context.Context) error, msgAndArgs ...any) {
	t.checkNotThrown(t.await(fn), msgAndArgs)
}

func (t *T) await(fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- catch(func() error { return fn(t.ctx) })
	}()

	select {
	case err := <-done:
		return err
	case <-t.ctx.Done():
		t.fail(fmt.Sprintf("Async function did not settle before the test context ended: %v", t.ctx.Err()), nil)
		return nil
	}
}

func (t *T) checkThrown(err error, opts []ThrowsOption) error {
	if err == nil {
		t.fail("Expected an exception", nil)
	}
	for _, opt := range opts {
		if msg := opt(err); msg != "" {
			t.fail(msg, nil)
		}
	}
	return err
}

func (t *T) checkNotThrown(err error, msgAndArgs []any) {
	if err != nil {
		t.fail(fmt.Sprintf("Expected no exception, got exception of type '%s': %s", errorTypeName(err), err.Error()), msgAndArgs)
	}
}
