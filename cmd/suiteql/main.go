// Package main provides the suiteql command.
package main

import (
	"os"

	"github.com/leapstack-labs/suiteql/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
