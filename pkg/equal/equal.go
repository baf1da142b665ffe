// Package equal implements the structural equality engine behind aqa's
// assertions.
//
// Compare walks actual and expected side by side and stops at the first
// divergence, reporting its Path together with rendered values. The expected
// side may contain two markers: Ignore matches anything, and IgnoreExtra
// tolerates properties present in actual but absent from the wrapped value.
package equal

import (
	"fmt"
	"reflect"
)

type ignoreSentinel struct{}

type extraWrapper struct {
	value any
}

// Ignore matches any actual value when used on the expected side.
var Ignore any = ignoreSentinel{}

// IgnoreExtra wraps an expected object so that properties present only in
// actual are tolerated. The tolerance applies to the wrapped level only;
// nested objects must be wrapped again.
func IgnoreExtra(value any) any {
	return extraWrapper{value: value}
}

// ComparisonError reports a panic raised by user code while a value was
// being traversed, for example inside an iterator function.
type ComparisonError struct {
	Path  Path
	Cause any
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("Error was thrown while comparing the path %q: %v", e.Path.String(), e.Cause)
}

func (e *ComparisonError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Compare reports the first difference between actual and expected.
// It returns (nil, nil) when both are equal.
func Compare(actual, expected any) (diff *Diff, err error) {
	c := newComparer()
	defer func() {
		if r := recover(); r != nil {
			diff = nil
			err = &ComparisonError{Path: c.path.clone(), Cause: r}
		}
	}()

	if c.compare(reflect.ValueOf(actual), reflect.ValueOf(expected)) {
		return nil, nil
	}
	return c.diff, nil
}

// Equal reports whether Compare finds no difference. A traversal panic
// counts as unequal.
func Equal(actual, expected any) bool {
	diff, err := Compare(actual, expected)
	return diff == nil && err == nil
}

// Same is the shallow equality used by is/not: primitives by value
// (any numeric type, NaN equals NaN, +0 equals -0), time instants, and
// identity for references.
func Same(actual, expected any) bool {
	a, e := unwrap(reflect.ValueOf(actual)), unwrap(reflect.ValueOf(expected))
	return same(a, kindOf(a), e, kindOf(e))
}
