// Package main is the entry point for the velentr CLI.
package main

import (
	"fmt"
	"os"

	"github.com/vonderborch/Velentr.Input-sub001/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
