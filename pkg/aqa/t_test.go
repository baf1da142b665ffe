package aqa

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("Test")

// check runs fn as a test body and returns the failure message, or "".
func check(fn TestFunc) string {
	s := newTestSuite()
	if f := invoke(fn, newT(context.Background(), s.Suite, "check")); f != nil {
		return f.Message
	}
	return ""
}

func TestAssertionMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   TestFunc
		want string
	}{
		{"is passes", func(t *T) { t.Is(2, 2) }, ""},
		{"is numbers", func(t *T) { t.Is(1, 2) }, "Expected 2, got 1"},
		{"is quotes strings", func(t *T) { t.Is(1, "1") }, `Expected "1", got 1`},
		{"is with message", func(t *T) { t.Is(1, 2, "values %d", 3) }, "Expected 2, got 1\nvalues 3"},
		{"not", func(t *T) { t.Not(1, 1) }, "Expected something other than 1, but got 1"},
		{"not passes", func(t *T) { t.Not(1, 2) }, ""},
		{"near passes", func(t *T) { t.Near(1.0, 1.05, 0.1) }, ""},
		{"near exact delta", func(t *T) { t.Near(0.3, 0.1+0.2, 0) }, ""},
		{"near", func(t *T) { t.Near(1, 3, 1) }, "Expected 1 to be within 1 of 3, difference was 2"},
		{"not near", func(t *T) { t.NotNear(1, 1.5, 1) }, "Expected 1 to not be within 1 of 1.5"},
		{"deep equal", func(t *T) { t.DeepEqual(map[string]any{"a": 1}, map[string]any{"a": 2}) }, "Difference found at:\nPath: a\n- 1\n+ 2"},
		{"deep equal missing", func(t *T) { t.DeepEqual(map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}) }, "Difference found at:\nPath: b\n- <missing>\n+ 2"},
		{"deep equal index", func(t *T) { t.DeepEqual(map[string]any{"a": []int{1, 2, 3}}, map[string]any{"a": []int{1, 2, 4}}) }, "Difference found at:\nPath: a[2]\n- 3\n+ 4"},
		{"deep equal ignore", func(t *T) { t.DeepEqual(map[string]any{"id": 9}, map[string]any{"id": Ignore}) }, ""},
		{"not deep equal", func(t *T) { t.NotDeepEqual(map[string]any{"a": 1}, map[string]any{"a": 1}) }, "No difference between actual and expected."},
		{"true", func(t *T) { t.True(false) }, "Expected true, got false"},
		{"false", func(t *T) { t.False(true) }, "Expected false, got true"},
		{"fail", func(t *T) { t.Fail("custom", 42) }, "custom\n42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := check(tt.fn); got != tt.want {
				t.Errorf("failure = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThrowsMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   TestFunc
		want string
	}{
		{"returns error", func(t *T) { t.Throws(func() error { return errTest }) }, ""},
		{"panics", func(t *T) { t.Throws(func() error { panic("boom") }) }, ""},
		{"no error", func(t *T) { t.Throws(func() error { return nil }) }, "Expected an exception"},
		{
			"instance of matches",
			func(t *T) {
				t.Throws(func() error {
					_, err := os.Open("/definitely/missing/file")
					return err
				}, InstanceOf[*fs.PathError]())
			},
			"",
		},
		{
			"instance of mismatch",
			func(t *T) { t.Throws(func() error { return errTest }, InstanceOf[*fs.PathError]()) },
			"Expected error to be an instance of '*fs.PathError', got '*errors.errorString'",
		},
		{
			"error is",
			func(t *T) { t.Throws(func() error { return errors.Join(errTest) }, ErrorIs(errTest)) },
			"",
		},
		{
			"message contains",
			func(t *T) { t.Throws(func() error { return errTest }, MessageContains("nope")) },
			`Expected error message to contain "nope", got "Test"`,
		},
		{
			"not throws error",
			func(t *T) { t.NotThrows(func() error { return errTest }) },
			"Expected no exception, got exception of type '*errors.errorString': Test",
		},
		{
			"not throws panic",
			func(t *T) { t.NotThrows(func() error { panic("boom") }) },
			"Expected no exception, got exception of type 'string': boom",
		},
		{"not throws passes", func(t *T) { t.NotThrows(func() error { return nil }) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := check(tt.fn); got != tt.want {
				t.Errorf("failure = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThrows_ReturnsCaughtError(t *testing.T) {
	t.Parallel()

	var caught error
	msg := check(func(t *T) {
		caught = t.Throws(func() error { return errTest })
	})

	assert.Empty(t, msg)
	assert.Same(t, errTest, caught)
}

func TestThrowsAsync(t *testing.T) {
	t.Parallel()

	var caught error
	msg := check(func(t *T) {
		caught = t.ThrowsAsync(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			return errTest
		})
		t.NotThrowsAsync(func(ctx context.Context) error { return ctx.Err() })
	})

	assert.Empty(t, msg)
	assert.Same(t, errTest, caught)
}

func TestThrowsAsync_AssertionInsideGoroutine(t *testing.T) {
	t.Parallel()

	msg := check(func(t *T) {
		t.NotThrowsAsync(func(ctx context.Context) error {
			t.Is(1, 2)
			return nil
		})
	})

	assert.Equal(t, "Expected no exception, got exception of type '*aqa.AssertionError': Expected 2, got 1", msg)
}

func TestThrowsAsync_ContextEnds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSuite()
	release := make(chan struct{})
	defer close(release)

	f := invoke(func(t *T) {
		t.ThrowsAsync(func(ctx context.Context) error {
			<-release
			return nil
		})
	}, newT(ctx, s.Suite, "slow"))

	require.NotNil(t, f)
	assert.Equal(t, "Async function did not settle before the test context ended: context canceled", f.Message)
}

func TestConsoleAndDisableLogging(t *testing.T) {
	s := newTestSuite()
	prevLog := log.Writer()

	s.Test("quiet", func(t *T) {
		t.Println("visible before")
		t.DisableLogging()
		t.Println("hidden")
		t.Printf("hidden %d\n", 2)
	})
	s.Test("loud", func(t *T) {
		t.Println("visible after")
	})
	s.Run(context.Background())

	out := s.stdout.String()
	assert.Contains(t, out, "visible before\n")
	assert.Contains(t, out, "visible after\n")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, prevLog, log.Writer())
}

type service struct {
	Fetch func(id int) (string, error)
	name  func() string
	Count int
}

func TestMock_StructField(t *testing.T) {
	t.Parallel()

	svc := &service{Fetch: func(id int) (string, error) { return "real", nil }}

	var mock *Mock
	msg := check(func(t *T) {
		mock = t.Mock(svc, "Fetch", func(id int) (string, error) { return "fake", nil })
		got, _ := svc.Fetch(1)
		t.Is(got, "fake")
		svc.Fetch(2)
	})
	require.Empty(t, msg)

	assert.Equal(t, [][]any{{1}, {2}}, mock.Calls())

	mock.Restore()
	got, _ := svc.Fetch(3)
	assert.Equal(t, "real", got)
	assert.Len(t, mock.Calls(), 2)
}

func TestMock_Map(t *testing.T) {
	t.Parallel()

	module := map[string]any{
		"greet": func(name string, extra ...string) string { return "hello " + name },
		"value": 3,
	}

	var mock *Mock
	msg := check(func(t *T) {
		mock = t.Mock(module, "greet", func(name string, extra ...string) string { return "hi " + name })
		greet := module["greet"].(func(string, ...string) string)
		t.Is(greet("bob", "x"), "hi bob")
	})
	require.Empty(t, msg)

	assert.Equal(t, [][]any{{"bob", []string{"x"}}}, mock.Calls())
	mock.Restore()
	assert.Equal(t, "hello ann", module["greet"].(func(string, ...string) string)("ann"))
}

func TestMock_Failures(t *testing.T) {
	t.Parallel()

	svc := &service{}
	module := map[string]any{"value": 3}

	tests := []struct {
		name string
		fn   TestFunc
		want string
	}{
		{"missing field", func(t *T) { t.Mock(svc, "Nope", func() {}) }, "Cannot mock 'Nope': no such property"},
		{"not a function", func(t *T) { t.Mock(svc, "Count", func() {}) }, "Cannot mock 'Count': property is not a function"},
		{"unexported", func(t *T) { t.Mock(svc, "name", func() string { return "" }) }, "Cannot mock 'name': property is not settable"},
		{"replacement not a function", func(t *T) { t.Mock(svc, "Fetch", 42) }, "Cannot mock 'Fetch': replacement is not a function"},
		{
			"replacement wrong type",
			func(t *T) { t.Mock(svc, "Fetch", func() {}) },
			"Cannot mock 'Fetch': replacement of type func() is not assignable to func(int) (string, error)",
		},
		{"map missing", func(t *T) { t.Mock(module, "nope", func() {}) }, "Cannot mock 'nope': no such property"},
		{"map value", func(t *T) { t.Mock(module, "value", func() {}) }, "Cannot mock 'value': property is not a function"},
		{"bad target", func(t *T) { t.Mock(42, "x", func() {}) }, "Cannot mock 'x': target must be a struct pointer or a map, got int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := check(tt.fn); got != tt.want {
				t.Errorf("failure = %q, want %q", got, tt.want)
			}
		})
	}
}

var greeting = func() string { return "real" }

func TestMockFunc(t *testing.T) {
	var mock *Mock
	msg := check(func(t *T) {
		mock = MockFunc(t, &greeting, func() string { return "fake" })
		t.Is(greeting(), "fake")
	})
	require.Empty(t, msg)

	assert.Len(t, mock.Calls(), 1)
	mock.Restore()
	assert.Equal(t, "real", greeting())
}

func TestMessageFromArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []any
		want string
	}{
		{nil, ""},
		{[]any{"plain"}, "plain"},
		{[]any{42}, "42"},
		{[]any{"%s=%d", "x", 1}, "x=1"},
		{[]any{1, 2}, "1 2"},
	}

	for _, tt := range tests {
		if got := messageFromArgs(tt.args); got != tt.want {
			t.Errorf("messageFromArgs(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestConsoleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(WithOutput(&buf, &bytes.Buffer{}), WithName("x"))
	s.Test("writes", func(t *T) {
		t.Console().Write([]byte("raw\n"))
	})
	s.Run(context.Background())

	assert.Equal(t, "raw\n", buf.String())
}
