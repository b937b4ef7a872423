// ABOUTME: ToolInvocation is the append-only audit record of a tool call
// ABOUTME: Parameters and result are stored as serialized JSON
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvocationStatus is the outcome recorded for a tool call
type InvocationStatus string

const (
	InvocationSuccess InvocationStatus = "success"
	InvocationFailure InvocationStatus = "failure"
)

// ToolInvocation ties a tool call to the assistant message that reported it
type ToolInvocation struct {
	ID         string           `json:"id"`
	MessageID  string           `json:"message_id"`
	ToolName   string           `json:"tool_name"`
	Parameters json.RawMessage  `json:"parameters"`
	Result     json.RawMessage  `json:"result"`
	Status     InvocationStatus `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewToolInvocation serializes params and result into a new audit record
func NewToolInvocation(messageID, toolName string, params, result interface{}, status InvocationStatus, at time.Time) (*ToolInvocation, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	if at.IsZero() {
		at = time.Now()
	}
	return &ToolInvocation{
		ID:         uuid.New().String(),
		MessageID:  messageID,
		ToolName:   toolName,
		Parameters: paramsJSON,
		Result:     resultJSON,
		Status:     status,
		Timestamp:  at.UTC(),
	}, nil
}

// StatusFromSuccess maps a result's success flag to an invocation status
func StatusFromSuccess(success bool) InvocationStatus {
	if success {
		return InvocationSuccess
	}
	return InvocationFailure
}
