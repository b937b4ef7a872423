// ABOUTME: Todo represents a user's task item and its status state machine
// ABOUTME: Soft delete is the one-way transition to archived
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
)

const (
	// MaxTitleLength is the maximum title length in characters
	MaxTitleLength = 200
	// MaxDescriptionLength is the maximum description length in characters
	MaxDescriptionLength = 5000
)

// TodoStatus represents the lifecycle state of a todo
type TodoStatus string

const (
	TodoOpen      TodoStatus = "open"
	TodoCompleted TodoStatus = "completed"
	TodoArchived  TodoStatus = "archived"
)

// Priority represents todo importance
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TodoStatuses lists every status in declaration order
var TodoStatuses = []TodoStatus{TodoOpen, TodoCompleted, TodoArchived}

// Priorities lists every priority in ascending order
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// transitions holds the allowed status edges. Self-loops are implicit.
var transitions = map[TodoStatus][]TodoStatus{
	TodoOpen:      {TodoCompleted, TodoArchived},
	TodoCompleted: {TodoOpen, TodoArchived},
	TodoArchived:  {},
}

// Todo is a single task owned by exactly one user
type Todo struct {
	ID                      int64      `json:"id"`
	UserID                  string     `json:"user_id"`
	Title                   string     `json:"title"`
	Description             string     `json:"description,omitempty"`
	Status                  TodoStatus `json:"status"`
	Priority                Priority   `json:"priority"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
	CreatedInConversationID string     `json:"created_in_conversation_id,omitempty"`
}

// NewTodo builds an open todo with validated fields. An empty priority means medium.
func NewTodo(userID, title, description string, priority Priority) (*Todo, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, chaterr.New(chaterr.KindValidation, "todo.new", "user id cannot be empty")
	}
	cleanTitle, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	cleanDesc, err := ValidateDescription(description)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, chaterr.Newf(chaterr.KindValidation, "todo.new", "invalid priority %q", priority)
	}

	now := time.Now().UTC()
	return &Todo{
		UserID:      userID,
		Title:       cleanTitle,
		Description: cleanDesc,
		Status:      TodoOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateTitle trims and checks a title, returning the cleaned value
func ValidateTitle(title string) (string, error) {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return "", chaterr.New(chaterr.KindValidation, "todo.title", "title cannot be empty").
			WithUserMessage("Todo title is required.")
	}
	if utf8.RuneCountInString(clean) > MaxTitleLength {
		return "", chaterr.Newf(chaterr.KindValidation, "todo.title", "title exceeds %d characters", MaxTitleLength).
			WithUserMessage("That title is too long. Please keep it under 200 characters.")
	}
	return clean, nil
}

// ValidateDescription trims and checks a description
func ValidateDescription(description string) (string, error) {
	clean := strings.TrimSpace(description)
	if utf8.RuneCountInString(clean) > MaxDescriptionLength {
		return "", chaterr.Newf(chaterr.KindValidation, "todo.description", "description exceeds %d characters", MaxDescriptionLength)
	}
	return clean, nil
}

// Valid reports whether s is a known status
func (s TodoStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s TodoStatus) CanTransitionTo(next TodoStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParseStatus parses a status name case-insensitively
func ParseStatus(s string) (TodoStatus, error) {
	status := TodoStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", chaterr.Newf(chaterr.KindValidation, "todo.status", "invalid status %q", s)
	}
	return status, nil
}

// ParsePriority parses a priority name case-insensitively
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", chaterr.Newf(chaterr.KindValidation, "todo.priority", "invalid priority %q", s)
	}
	return p, nil
}

// TransitionTo moves the todo to next and refreshes UpdatedAt
func (t *Todo) TransitionTo(next TodoStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return chaterr.Newf(chaterr.KindValidation, "todo.transition", "cannot move todo %d from %s to %s", t.ID, t.Status, next).
			WithUserMessage("Archived todos can't be changed.")
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}

// Archive performs the soft delete
func (t *Todo) Archive(now time.Time) error {
	return t.TransitionTo(TodoArchived, now)
}

// IsArchived reports whether the todo was soft-deleted
func (t *Todo) IsArchived() bool {
	return t.Status == TodoArchived
}
