//go:build ignore

package main

import "github.com/aqatest/aqa/pkg/aqa"

func main() {
	suite := aqa.New()

	suite.Test("adds", func(t *aqa.T) {
		t.Is(1+1, 3)
	})

	suite.Test("subtracts", func(t *aqa.T) {
		t.Is(3-1, 2)
	})

	suite.Main()
}
