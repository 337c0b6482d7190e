// Package main provides the dbtdoc CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/dbtdoc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
