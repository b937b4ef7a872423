// ABOUTME: Tests for Todo construction, validation, and the status state machine
// ABOUTME: Covers title bounds, default priority, and irreversible archiving
package models

import (
	"strings"
	"testing"
	"time"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
)

func TestNewTodo(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		priority     Priority
		wantErr      bool
		wantTitle    string
		wantPriority Priority
	}{
		{"simple", "buy groceries", "", false, "buy groceries", PriorityMedium},
		{"trims whitespace", "  call mom  ", PriorityHigh, false, "call mom", PriorityHigh},
		{"single char", "x", PriorityLow, false, "x", PriorityLow},
		{"max length", strings.Repeat("a", MaxTitleLength), "", false, strings.Repeat("a", MaxTitleLength), PriorityMedium},
		{"empty", "", "", true, "", ""},
		{"whitespace only", " \t\n ", "", true, "", ""},
		{"too long", strings.Repeat("a", MaxTitleLength+1), "", true, "", ""},
		{"bad priority", "task", Priority("urgent"), true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo, err := NewTodo("alice", tt.title, "", tt.priority)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewTodo() expected error, got nil")
				}
				if !chaterr.Is(err, chaterr.KindValidation) {
					t.Errorf("NewTodo() error kind = %q, want validation", chaterr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTodo() error = %v", err)
			}
			if todo.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", todo.Title, tt.wantTitle)
			}
			if todo.Priority != tt.wantPriority {
				t.Errorf("Priority = %q, want %q", todo.Priority, tt.wantPriority)
			}
			if todo.Status != TodoOpen {
				t.Errorf("Status = %q, want open", todo.Status)
			}
			if !todo.CreatedAt.Equal(todo.UpdatedAt) {
				t.Error("CreatedAt and UpdatedAt should match on creation")
			}
		})
	}
}

func TestNewTodo_EmptyUser(t *testing.T) {
	if _, err := NewTodo("", "task", "", ""); !chaterr.Is(err, chaterr.KindValidation) {
		t.Errorf("NewTodo() with empty user error = %v, want validation", err)
	}
}

func TestValidateDescription(t *testing.T) {
	if _, err := ValidateDescription(strings.Repeat("d", MaxDescriptionLength)); err != nil {
		t.Errorf("ValidateDescription(max) error = %v", err)
	}
	if _, err := ValidateDescription(strings.Repeat("d", MaxDescriptionLength+1)); err == nil {
		t.Error("ValidateDescription(max+1) expected error")
	}
}

func TestTodoStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TodoStatus
		want     bool
	}{
		{TodoOpen, TodoCompleted, true},
		{TodoCompleted, TodoOpen, true},
		{TodoOpen, TodoArchived, true},
		{TodoCompleted, TodoArchived, true},
		{TodoCompleted, TodoCompleted, true},
		{TodoArchived, TodoArchived, true},
		{TodoArchived, TodoOpen, false},
		{TodoArchived, TodoCompleted, false},
		{TodoOpen, TodoStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTodo_ArchiveIsIrreversible(t *testing.T) {
	todo, err := NewTodo("alice", "walk dog", "", "")
	if err != nil {
		t.Fatalf("NewTodo() error = %v", err)
	}

	later := todo.UpdatedAt.Add(time.Minute)
	if err := todo.Archive(later); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !todo.IsArchived() || !todo.UpdatedAt.Equal(later) {
		t.Errorf("after Archive: status=%q updated=%v", todo.Status, todo.UpdatedAt)
	}

	err = todo.TransitionTo(TodoOpen, later.Add(time.Minute))
	if !chaterr.Is(err, chaterr.KindValidation) {
		t.Errorf("TransitionTo(open) from archived error = %v, want validation", err)
	}
	if todo.Status != TodoArchived {
		t.Errorf("Status = %q after rejected transition, want archived", todo.Status)
	}
}

func TestParseStatusAndPriority(t *testing.T) {
	if s, err := ParseStatus(" Completed "); err != nil || s != TodoCompleted {
		t.Errorf("ParseStatus() = %q, %v", s, err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus(done) expected error")
	}
	if p, err := ParsePriority("HIGH"); err != nil || p != PriorityHigh {
		t.Errorf("ParsePriority() = %q, %v", p, err)
	}
	if _, err := ParsePriority(""); err == nil {
		t.Error("ParsePriority(empty) expected error")
	}
}
