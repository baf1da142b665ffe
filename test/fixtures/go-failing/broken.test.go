//go:build ignore

package main

import "github.com/aqatest/aqa/pkg/aqa"

func main() {
	suite := aqa.New()

	suite.Test("never compiles", func(t *aqa.T) {
		t.Is(undefinedValue, 1)
	})

	suite.Main()
}
