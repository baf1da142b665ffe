// Package main is the entry point for the aqa command.
package main

import (
	"os"

	"github.com/aqatest/aqa/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
