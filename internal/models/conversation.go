// ABOUTME: Conversation represents a chat session owned by a single user
// ABOUTME: Created on the first message when no conversation id is supplied
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
)

// Conversation is an ordered sequence of messages
type Conversation struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// NewConversation creates a conversation owned by userID
func NewConversation(userID string) (*Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, chaterr.New(chaterr.KindValidation, "conversation.new", "user id cannot be empty")
	}
	now := time.Now().UTC()
	return &Conversation{
		ID:            uuid.New().String(),
		UserID:        userID,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}, nil
}

// OwnedBy reports whether userID owns the conversation
func (c *Conversation) OwnedBy(userID string) bool {
	return c.UserID == userID
}

// ParseConversationID validates a conversation identifier
func ParseConversationID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", chaterr.Newf(chaterr.KindValidation, "conversation.id", "invalid conversation id %q", id).
			WithUserMessage("Invalid conversation ID format.")
	}
	return parsed.String(), nil
}
