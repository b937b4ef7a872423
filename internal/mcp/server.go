// ABOUTME: Stdio MCP server bootstrap shared by the todochat binaries
// ABOUTME: Builds the server from the application container and runs it until a signal or EOF
package mcp

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/app"
)

// ServerName is reported to MCP clients
const ServerName = "todochat"

// NewServer builds an MCP server exposing the todo and chat tools
func NewServer(a *app.App, version string) (*mcpserver.MCPServer, error) {
	o, err := a.Orchestrator()
	if err != nil {
		return nil, err
	}
	registry, err := a.Registry()
	if err != nil {
		return nil, err
	}
	log, err := a.Logger()
	if err != nil {
		return nil, err
	}

	server := mcpserver.NewMCPServer(ServerName, version)
	RegisterTools(server, o, registry, a.Config().UserID, log)
	return server, nil
}

// Serve runs the server on stdio until ctx is done or the transport stops
func Serve(ctx context.Context, a *app.App, version string) error {
	server, err := NewServer(a, version)
	if err != nil {
		return err
	}
	log, err := a.Logger()
	if err != nil {
		return err
	}

	log.WithField("user_id", a.Config().UserID).Info("todochat MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
