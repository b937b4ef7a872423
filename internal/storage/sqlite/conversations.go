// ABOUTME: Conversation storage operations for SQLite
// ABOUTME: Implements create, lookup, listing, and timestamp bump for conversations
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// ConversationStore handles conversation persistence
type ConversationStore struct {
	q querier
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(q querier) *ConversationStore {
	return &ConversationStore{q: q}
}

// Create inserts a new conversation
func (s *ConversationStore) Create(ctx context.Context, conv *models.Conversation) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, created_at, last_updated_at)
		VALUES (?, ?, ?, ?)
	`, conv.ID, conv.UserID, conv.CreatedAt.UTC(), conv.LastUpdatedAt.UTC())
	return err
}

// Get retrieves a conversation by id, returning nil when absent
func (s *ConversationStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.q.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, last_updated_at
		FROM conversations
		WHERE id = ?
	`, id).Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.LastUpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByUser returns a user's conversations, most recently updated first
func (s *ConversationStore) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, created_at, last_updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY last_updated_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.LastUpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// Touch bumps last_updated_at
func (s *ConversationStore) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := s.q.ExecContext(ctx, "UPDATE conversations SET last_updated_at = ? WHERE id = ?", at.UTC(), id)
	return err
}
