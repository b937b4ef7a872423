// ABOUTME: Tool invocation audit log storage for SQLite
// ABOUTME: Append-only; there is deliberately no update or delete operation
package sqlite

import (
	"context"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// InvocationStore handles tool invocation persistence
type InvocationStore struct {
	q querier
}

// NewInvocationStore creates a new InvocationStore
func NewInvocationStore(q querier) *InvocationStore {
	return &InvocationStore{q: q}
}

// Append writes an audit record
func (s *InvocationStore) Append(ctx context.Context, inv *models.ToolInvocation) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tool_invocations (id, message_id, tool_name, parameters, result, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.MessageID, inv.ToolName, string(inv.Parameters), string(inv.Result),
		string(inv.Status), inv.Timestamp.UTC())
	return err
}

// ListByMessage returns the invocations tied to a message, oldest first
func (s *InvocationStore) ListByMessage(ctx context.Context, messageID string) ([]models.ToolInvocation, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, message_id, tool_name, parameters, result, status, timestamp
		FROM tool_invocations
		WHERE message_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`, messageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var invs []models.ToolInvocation
	for rows.Next() {
		var (
			inv            models.ToolInvocation
			params, result string
			status         string
		)
		if err := rows.Scan(&inv.ID, &inv.MessageID, &inv.ToolName, &params, &result, &status, &inv.Timestamp); err != nil {
			return nil, err
		}
		inv.Parameters = []byte(params)
		inv.Result = []byte(result)
		inv.Status = models.InvocationStatus(status)
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
