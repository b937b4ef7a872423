// ABOUTME: Tests for reply formatting and tool error translation
// ABOUTME: Verifies friendly text and fuzzy suggestions for unknown titles
package core

import (
	"strings"
	"testing"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

func TestTranslateToolError(t *testing.T) {
	tests := []struct {
		err      string
		contains string
	}{
		{"Todo 7 not found", "couldn't find"},
		{"Database error: disk I/O", "database"},
		{"invalid id format: abc", "doesn't look right"},
		{"unauthorized", "permission"},
		{"Operation took too long (>5s)", "too long"},
		{"boom", "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			got := TranslateToolError(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("TranslateToolError(%q) = %q, want it to contain %q", tt.err, got, tt.contains)
			}
			if strings.Contains(got, tt.err) {
				t.Errorf("TranslateToolError(%q) leaked the internal message", tt.err)
			}
		})
	}
}

func TestListReply(t *testing.T) {
	if got := listReply(nil); got != emptyListReply {
		t.Errorf("listReply(nil) = %q", got)
	}

	todos := []models.Todo{
		{Title: "buy milk", Status: models.TodoOpen},
		{Title: "pay rent", Status: models.TodoCompleted},
	}
	want := "Here are your todos:\n- buy milk (open)\n- pay rent (completed)"
	if got := listReply(todos); got != want {
		t.Errorf("listReply() = %q, want %q", got, want)
	}
}

func TestMarkedReply(t *testing.T) {
	if got := markedReply("x", models.TodoCompleted); got != "✓ Marked 'x' as complete." {
		t.Errorf("markedReply(completed) = %q", got)
	}
	if got := markedReply("x", models.TodoOpen); got != "✓ Marked 'x' as open." {
		t.Errorf("markedReply(open) = %q", got)
	}
}

func TestNotFoundReply(t *testing.T) {
	todos := []models.Todo{{Title: "Water plants"}, {Title: "Pay rent"}}

	got := notFoundReply("watr plants", todos)
	if !strings.HasPrefix(got, "Todo 'watr plants' not found.") {
		t.Errorf("notFoundReply() = %q", got)
	}
	if !strings.Contains(got, "Did you mean 'Water plants'?") {
		t.Errorf("notFoundReply() = %q, want a suggestion", got)
	}

	if got := notFoundReply("zzz", todos); got != "Todo 'zzz' not found." {
		t.Errorf("notFoundReply(no match) = %q", got)
	}
}
