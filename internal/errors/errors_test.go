package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAqaError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AqaError
		expected string
	}{
		{
			name:     "message only",
			err:      &AqaError{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with file",
			err:      &AqaError{File: "math.test.go", Message: "runner failed"},
			expected: "[math.test.go] runner failed",
		},
		{
			name:     "with cause",
			err:      &AqaError{Message: "cannot read aqa.yaml", Cause: errors.New("permission denied")},
			expected: "cannot read aqa.yaml: permission denied",
		},
		{
			name:     "with file and cause",
			err:      &AqaError{File: "a.test.go", Message: "start", Cause: errors.New("boom")},
			expected: "[a.test.go] start: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAqaError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AqaError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}

	errNoCause := &AqaError{Message: "no cause"}
	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAqaError_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"validation", KindValidation, ExitConfigError},
		{"not found", KindNotFound, ExitEnvironmentError},
		{"environment", KindEnvironment, ExitEnvironmentError},
		{"test failure", KindTestFailure, ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &AqaError{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf("error %d: %s", 42, "details")

	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	if err.Message != "error 42: details" {
		t.Errorf("Message = %q, want %q", err.Message, "error 42: details")
	}
}

func TestConfigf(t *testing.T) {
	err := Configf("field %q: %s", "reporter", "must be tap or junit")

	if err.Kind != KindConfig {
		t.Errorf("Kind = %v, want %v", err.Kind, KindConfig)
	}
	expected := `field "reporter": must be tap or junit`
	if err.Message != expected {
		t.Errorf("Message = %q, want %q", err.Message, expected)
	}
	if err.ExitCode() != ExitConfigError {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitConfigError)
	}
}

func TestEnvironmentf(t *testing.T) {
	err := Environmentf("runner %q not found", "node")

	if err.ExitCode() != ExitEnvironmentError {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitEnvironmentError)
	}
}

func TestTestsFailed(t *testing.T) {
	err := TestsFailed(3)

	if err.Kind != KindTestFailure {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTestFailure)
	}
	if err.Error() != "3 test(s) failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "3 test(s) failed")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("original error")
	err := Wrap(cause, "wrapped message")

	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find original cause")
	}
}

func TestWrapKind(t *testing.T) {
	err := WrapKind(KindConfig, errors.New("yaml: line 3"), "parse aqa.yaml")

	if err.ExitCode() != ExitConfigError {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitConfigError)
	}
}

func TestFileError(t *testing.T) {
	err := FileError("sum.test.go", "runner failed", nil)

	if err.File != "sum.test.go" {
		t.Errorf("File = %q, want %q", err.File, "sum.test.go")
	}
	if err.Error() != "[sum.test.go] runner failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("runner", "deno")

	expected := "runner not found: deno"
	if err.Message != expected {
		t.Errorf("Message = %q, want %q", err.Message, expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"runtime", New("runtime"), ExitRuntimeError},
		{"config", Config("config"), ExitConfigError},
		{"environment", Environment("no node"), ExitEnvironmentError},
		{"wrapped config", fmt.Errorf("load: %w", Config("bad")), ExitConfigError},
		{"generic error", errors.New("generic"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitRuntimeError != 1 {
		t.Errorf("ExitRuntimeError = %d, want 1", ExitRuntimeError)
	}
	if ExitConfigError != 2 {
		t.Errorf("ExitConfigError = %d, want 2", ExitConfigError)
	}
	if ExitEnvironmentError != 3 {
		t.Errorf("ExitEnvironmentError = %d, want 3", ExitEnvironmentError)
	}
}
