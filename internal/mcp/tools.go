// ABOUTME: MCP tool definitions and registration for the todochat server
// ABOUTME: Derives todo tool schemas from the registry and adds the chat and history tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/core"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

// Chat-level tool names
const (
	SendMessage            = "send_message"
	GetConversationHistory = "get_conversation_history"
)

// RegisterTools registers all MCP tools with the server. Every call runs as userID.
func RegisterTools(server *mcpserver.MCPServer, orchestrator *core.Orchestrator, registry *tools.Registry, userID string, log logrus.FieldLogger) *Handlers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	handlers := &Handlers{
		orchestrator: orchestrator,
		userID:       userID,
		log:          log.WithField("component", "mcp"),
	}

	// Todo tools run directly against the registry
	for _, t := range registry.Tools() {
		server.AddTool(toolDefinition(t), handlers.RunTool(t.Name))
	}

	// send_message runs a full assistant turn
	server.AddTool(mcp.Tool{
		Name:        SendMessage,
		Description: "Send a chat message to the todo assistant. Starts a new conversation unless conversation_id is given. Returns the reply, the current todos, and the tool calls made.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "What the user said, e.g. 'add buy milk' or 'mark buy milk as done'",
				},
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Existing conversation to continue",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.SendMessage)

	server.AddTool(mcp.Tool{
		Name:        GetConversationHistory,
		Description: "Get every message of a conversation together with the tool calls each assistant reply made.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to load",
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.GetConversationHistory)

	return handlers
}

// toolDefinition turns a registry tool into its MCP form
func toolDefinition(t *tools.Tool) mcp.Tool {
	props := make(map[string]interface{}, len(t.Params))
	required := []string{}

	for _, p := range t.Params {
		prop := map[string]interface{}{"description": p.Description}
		switch p.Type {
		case tools.TypeID:
			prop["type"] = "integer"
			prop["minimum"] = 1
		default:
			prop["type"] = "string"
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.MaxLength > 0 {
			prop["maxLength"] = p.MaxLength
		}
		if p.Default != "" {
			prop["default"] = p.Default
		}
		props[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}
