// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents manage todos and chat with the assistant over stdio
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs todochat as an MCP (Model Context Protocol) server on stdio. The
create_todo, read_todos, update_todo and delete_todo tools act directly
on the configured user's todos; send_message runs a full assistant turn.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  todochat mcp --user alice

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "todochat": {
  #       "command": "todochat",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcp.Serve(ctx, a, versionInfo.Version)
}
