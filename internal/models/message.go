// ABOUTME: Message represents one immutable utterance in a conversation
// ABOUTME: Messages are ordered by timestamp with insertion order breaking ties
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
)

// MaxMessageLength is the maximum message content length in characters
const MaxMessageLength = 10000

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message belongs to exactly one conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id
func NewMessage(conversationID string, role Role, content string, at time.Time) (*Message, error) {
	if conversationID == "" {
		return nil, chaterr.New(chaterr.KindValidation, "message.new", "conversation id cannot be empty")
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, chaterr.Newf(chaterr.KindValidation, "message.new", "invalid role %q", role)
	}
	if err := ValidateMessageContent(content); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = time.Now()
	}
	return &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      at.UTC(),
	}, nil
}

// ValidateMessageContent rejects empty or oversized content
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return chaterr.New(chaterr.KindValidation, "message.content", "message cannot be empty").
			WithUserMessage("Message cannot be empty. Please provide a message.")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return chaterr.Newf(chaterr.KindValidation, "message.content", "message exceeds %d characters", MaxMessageLength).
			WithUserMessage("That message is too long. Please shorten it and try again.")
	}
	return nil
}
