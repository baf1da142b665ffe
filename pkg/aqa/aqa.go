// Package aqa is a small test runner and assertion library.
//
// A test file is a standalone program that builds a Suite, registers tests
// and hooks, and hands control to Suite.Main:
//
//	//go:build ignore
//
//	package main
//
//	import "github.com/aqatest/aqa/pkg/aqa"
//
//	func main() {
//		suite := aqa.New()
//		suite.Test("adds numbers", func(t *aqa.T) {
//			t.Is(1+1, 2)
//		})
//		suite.Main()
//	}
//
// The aqa command discovers such files, runs each one in its own process and
// aggregates the summary line every process prints last.
package aqa

import "github.com/aqatest/aqa/pkg/equal"

// Ignore matches any actual value when placed on the expected side of
// DeepEqual.
var Ignore = equal.Ignore

// IgnoreExtra wraps an expected object so that properties present only in
// the actual value are tolerated at that level.
func IgnoreExtra(value any) any {
	return equal.IgnoreExtra(value)
}
