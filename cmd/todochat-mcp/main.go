// ABOUTME: Main entry point for the todochat MCP server with stdio transport
// ABOUTME: Loads config, builds the application container, and serves until interrupted
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/app"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/config"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/mcp"
)

var version = "dev"

func main() {
	cfg, err := config.LoadWithDotEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// stdout carries the protocol; logs go to stderr
	a := app.New(cfg, app.WithLogOutput(os.Stderr))
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.Serve(ctx, a, version); err != nil {
		a.Close()
		log.Fatalf("Server error: %v", err)
	}
}
