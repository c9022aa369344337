package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/searchbench/internal/cli"
	"github.com/cloo-solutions/searchbench/internal/cli/commands"
)

var version = "dev"

func main() {
	rootCmd := commands.NewRootCmd(version)

	// With no arguments the tool behaves like the classic benchmark run.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
