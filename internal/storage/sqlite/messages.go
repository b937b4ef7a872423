// ABOUTME: Message storage operations for SQLite
// ABOUTME: Messages are insert-only and read back in timestamp then insertion order
package sqlite

import (
	"context"
	"database/sql"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// MessageStore handles message persistence
type MessageStore struct {
	q querier
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(q querier) *MessageStore {
	return &MessageStore{q: q}
}

// Append inserts a message
func (s *MessageStore) Append(ctx context.Context, msg *models.Message) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, string(msg.Role), msg.Content, msg.Timestamp.UTC())
	return err
}

// Get retrieves a message by id, returning nil when absent
func (s *MessageStore) Get(ctx context.Context, id string) (*models.Message, error) {
	var (
		msg  models.Message
		role string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, conversation_id, role, content, timestamp
		FROM messages
		WHERE id = ?
	`, id).Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.Timestamp)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	msg.Role = models.Role(role)
	return &msg, nil
}

// ListByConversation returns all messages of a conversation in order
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []models.Message
	for rows.Next() {
		var (
			msg  models.Message
			role string
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		msg.Role = models.Role(role)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// CountByConversation returns the number of messages in a conversation
func (s *MessageStore) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conversationID).Scan(&n)
	return n, err
}
