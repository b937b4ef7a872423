// ABOUTME: Shared fixtures for SQLite store tests
// ABOUTME: Creates conversations and messages with fatal-on-error semantics
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

func mustCreateConversation(t *testing.T, store *ConversationStore, userID string) *models.Conversation {
	t.Helper()
	conv, err := models.NewConversation(userID)
	if err != nil {
		t.Fatalf("NewConversation() error = %v", err)
	}
	if err := store.Create(context.Background(), conv); err != nil {
		t.Fatalf("Create conversation error = %v", err)
	}
	return conv
}

func mustAppendMessage(t *testing.T, store *MessageStore, convID string, role models.Role, content string, at time.Time) *models.Message {
	t.Helper()
	msg, err := models.NewMessage(convID, role, content, at)
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if err := store.Append(context.Background(), msg); err != nil {
		t.Fatalf("Append message error = %v", err)
	}
	return msg
}
