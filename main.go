package main

import (
	"os"

	"github.com/partsim/partsim/cmd"
)

// The CLI's flag parsing and simulation driver live in cmd; main only owns
// the process exit code.
func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
