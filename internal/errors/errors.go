// Package errors provides structured error types and exit codes for aqa.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the aqa command.
const (
	ExitSuccess          = 0 // All tests and hooks passed
	ExitRuntimeError     = 1 // Test failure or runtime error
	ExitConfigError      = 2 // Invalid manifest, flag or environment value
	ExitEnvironmentError = 3 // Missing runner, unreadable directory, etc.
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
	KindTestFailure
)

// AqaError is the base error type for the aqa command.
type AqaError struct {
	Kind    ErrorKind
	Message string
	File    string // Test file if applicable
	Cause   error  // Underlying error
}

func (e *AqaError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("[%s] %s", e.File, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AqaError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *AqaError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindEnvironment, KindNotFound:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *AqaError {
	return &AqaError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...any) *AqaError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *AqaError {
	return &AqaError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...any) *AqaError {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *AqaError {
	return &AqaError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...any) *AqaError {
	return Environment(fmt.Sprintf(format, args...))
}

// TestsFailed reports that at least one test or hook failed.
func TestsFailed(failed int) *AqaError {
	return &AqaError{
		Kind:    KindTestFailure,
		Message: fmt.Sprintf("%d test(s) failed", failed),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *AqaError {
	return &AqaError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WrapKind wraps an error and assigns it the given kind.
func WrapKind(kind ErrorKind, err error, message string) *AqaError {
	return &AqaError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// FileError creates an error tied to a test file.
func FileError(file, message string, cause error) *AqaError {
	return &AqaError{
		Kind:    KindRuntime,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *AqaError {
	return &AqaError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ae *AqaError
	if stderrors.As(err, &ae) {
		return ae.ExitCode()
	}
	return ExitRuntimeError
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
