//go:build ignore

package main

import (
	"errors"
	"strconv"

	"github.com/aqatest/aqa/pkg/aqa"
)

type point struct{ X, Y int }

func main() {
	suite := aqa.New()

	calls := 0
	suite.BeforeEach(func(t *aqa.T) { calls++ })

	suite.Test("adds numbers", func(t *aqa.T) {
		t.Is(1+1, 2)
		t.Near(0.1+0.2, 0.3, 1e-9)
	})

	suite.Test("compares structures", func(t *aqa.T) {
		t.DeepEqual(
			map[string]any{"p": point{1, 2}, "id": 7},
			map[string]any{"p": point{1, 2}, "id": aqa.Ignore},
		)
		t.NotDeepEqual([]int{1, 2}, []int{1, 2, 3})
	})

	suite.Test("reports parse errors", func(t *aqa.T) {
		err := t.Throws(func() error {
			_, err := strconv.Atoi("x")
			return err
		}, aqa.InstanceOf[*strconv.NumError]())
		t.True(errors.Is(err, strconv.ErrSyntax))
	})

	suite.Skip("rounds half to even", func(t *aqa.T) {
		t.Fail("not implemented")
	})

	suite.After(func(t *aqa.T) {
		t.Is(calls, 3)
	})

	suite.Main()
}
