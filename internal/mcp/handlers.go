// ABOUTME: MCP tool handler implementations for the todochat server
// ABOUTME: Maps tool calls onto the orchestrator and failures onto user-facing error results
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/core"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	orchestrator *core.Orchestrator
	userID       string
	log          logrus.FieldLogger
}

// RunTool returns the handler for a registry tool
func (h *Handlers) RunTool(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call, err := h.orchestrator.RunTool(ctx, h.userID, name, request.GetArguments())
		if err != nil {
			h.log.WithError(err).WithField("tool_name", name).Warn("tool call failed")
			return mcp.NewToolResultError(chaterr.UserMessage(err)), nil
		}

		h.log.WithFields(logrus.Fields{
			"tool_name": name,
			"outcome":   call.Outcome,
			"duration":  call.Duration,
		}).Info("tool call")

		if !call.Result.Success() {
			msg := call.Result.UserMessage()
			if msg == "" {
				msg = call.Result.ErrorMessage()
			}
			return mcp.NewToolResultError(msg), nil
		}
		return jsonResult(call.Result)
	}
}

// SendMessage handles the send_message tool
func (h *Handlers) SendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}

	resp, err := h.orchestrator.ProcessTurn(ctx, core.TurnRequest{
		UserID:         h.userID,
		ConversationID: request.GetString("conversation_id", ""),
		Message:        message,
	})
	if err != nil {
		return mcp.NewToolResultError(chaterr.UserMessage(err)), nil
	}
	return jsonResult(resp)
}

// GetConversationHistory handles the get_conversation_history tool
func (h *Handlers) GetConversationHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	convID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}

	history, err := h.orchestrator.History(ctx, h.userID, convID)
	if err != nil {
		return mcp.NewToolResultError(chaterr.UserMessage(err)), nil
	}
	return jsonResult(history)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
