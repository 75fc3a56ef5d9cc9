// Package main is the leapgrade command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapgrade/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
