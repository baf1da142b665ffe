//go:build ignore

package main

import (
	"fmt"
	"strings"

	"github.com/aqatest/aqa/pkg/aqa"
)

var greeting = func(name string) string {
	return "Hello, " + name
}

func greet(names ...string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = greeting(n)
	}
	return strings.Join(parts, "\n")
}

func main() {
	suite := aqa.New()

	suite.Test("greets everyone", func(t *aqa.T) {
		t.Is(greet("Ada", "Linus"), "Hello, Ada\nHello, Linus")
	})

	suite.Test("uses the mocked greeting", func(t *aqa.T) {
		m := aqa.MockFunc(t, &greeting, func(name string) string {
			return "Hi " + name
		})
		defer m.Restore()
		t.Is(greet("Ada"), "Hi Ada")
		t.DeepEqual(m.Calls(), [][]any{{"Ada"}})
		t.Log("mock calls:", len(m.Calls()))
	})

	suite.Test("restores the greeting", func(t *aqa.T) {
		t.Is(greeting("Ada"), "Hello, Ada")
		fmt.Println("greet output is plain text")
	})

	suite.Main()
}
