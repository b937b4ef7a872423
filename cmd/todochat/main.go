// ABOUTME: Main entry point for the todochat CLI
// ABOUTME: Sets up the Cobra root command and maps failures to exit codes
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/AiWithAadil/spec-driven-todo-ai/cmd/todochat/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", commands.ErrorMessage(err))
		os.Exit(commands.ExitCode(err))
	}
}
