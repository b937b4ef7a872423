// ABOUTME: Assistant reply texts and translation of tool errors into friendly messages
// ABOUTME: Internal error text never reaches the user
package core

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

const (
	declineReply         = "I'm a todo assistant. I can help you create, list, update, or delete todos. What would you like to do?"
	confirmBulkReply     = "Are you sure you want to delete all your todos? This cannot be undone."
	askCreateTitleReply  = "I need a title for the todo. What should I call it?"
	askUpdateTargetReply = "Which todo? (example: mark sleeping as done)"
	askDeleteTargetReply = "Which todo to delete? (example: delete sleeping)"
	emptyListReply       = "You don't have any todos yet. Would you like to create one?"
)

type errorTranslation struct {
	needles []string
	message string
}

var errorTranslations = []errorTranslation{
	{[]string{"not found", "does not exist"}, "I couldn't find that item. Please check and try again."},
	{[]string{"database", "connection"}, "I'm having trouble accessing the database. Please try again in a moment."},
	{[]string{"validation", "invalid"}, "That doesn't look right. Please check your request and try again."},
	{[]string{"permission", "unauthorized"}, "I don't have permission to do that."},
	{[]string{"timeout", "took too long"}, "That took too long to process. Please try again."},
}

// TranslateToolError maps a technical tool error to a user-facing sentence
func TranslateToolError(errMsg string) string {
	lower := strings.ToLower(errMsg)
	for _, t := range errorTranslations {
		if containsAny(lower, t.needles) {
			return t.message
		}
	}
	return "Something went wrong. Please try again."
}

func createdReply(title string) string {
	return fmt.Sprintf("I've created a todo '%s' for you!", title)
}

func markedReply(title string, status models.TodoStatus) string {
	word := "open"
	if status == models.TodoCompleted {
		word = "complete"
	}
	return fmt.Sprintf("✓ Marked '%s' as %s.", title, word)
}

func deletedReply(title string) string {
	return fmt.Sprintf("✓ Deleted '%s'.", title)
}

func listReply(todos []models.Todo) string {
	if len(todos) == 0 {
		return emptyListReply
	}
	var b strings.Builder
	b.WriteString("Here are your todos:")
	for _, t := range todos {
		fmt.Fprintf(&b, "\n- %s (%s)", t.Title, t.Status)
	}
	return b.String()
}

// notFoundReply reports a missing title, suggesting the closest existing one
func notFoundReply(title string, todos []models.Todo) string {
	reply := fmt.Sprintf("Todo '%s' not found.", title)
	if s := suggestTitle(title, todos); s != "" {
		reply += fmt.Sprintf(" Did you mean '%s'?", s)
	}
	return reply
}

func suggestTitle(title string, todos []models.Todo) string {
	if len(todos) == 0 {
		return ""
	}
	titles := make([]string, len(todos))
	for i, t := range todos {
		titles[i] = strings.ToLower(t.Title)
	}
	matches := fuzzy.Find(strings.ToLower(title), titles)
	if len(matches) == 0 {
		return ""
	}
	return todos[matches[0].Index].Title
}
