// ABOUTME: IntentClassifier maps free text to one of four todo intents
// ABOUTME: Rules are evaluated in a fixed order and the first match wins
package core

import (
	"strings"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// Intent is the classified purpose of a user message
type Intent string

const (
	IntentCreate Intent = "create"
	IntentRead   Intent = "read"
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
)

// Keyword sets per intent, matched as case-insensitive substrings
var (
	deleteKeywords = []string{"delete", "remove", "drop", "erase"}
	updateKeywords = []string{"mark", "complete", "done", "finish", "unmark", "uncomplete", "not done", "not complete", "reopen", "pending", "undo"}
	readKeywords   = []string{"show", "list", "get", "display", "view", "read", "all", "tasks", "todos"}
	createKeywords = []string{"create", "add", "new", "make", "start", "write"}

	reopenKeywords   = []string{"not complete", "not done", "unmark", "uncomplete", "reopen", "pending", "undo"}
	completeKeywords = []string{"done", "complete", "finish"}
)

// IntentRule pairs a predicate over lower-cased text with the intent it selects
type IntentRule struct {
	Intent  Intent
	Matches func(lower string) bool
}

func keywordRule(intent Intent, keywords []string) IntentRule {
	return IntentRule{
		Intent:  intent,
		Matches: func(lower string) bool { return containsAny(lower, keywords) },
	}
}

// DefaultRules is the precedence order: delete, update, read, create
func DefaultRules() []IntentRule {
	return []IntentRule{
		keywordRule(IntentDelete, deleteKeywords),
		keywordRule(IntentUpdate, updateKeywords),
		keywordRule(IntentRead, readKeywords),
		keywordRule(IntentCreate, createKeywords),
	}
}

// Classifier evaluates an ordered rule list
type Classifier struct {
	rules    []IntentRule
	fallback Intent
}

// NewClassifier creates a classifier with DefaultRules and a create fallback
func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules(), fallback: IntentCreate}
}

// Classify returns the intent of the first matching rule, independent of
// where in the message the keyword appears
func (c *Classifier) Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, r := range c.rules {
		if r.Matches(lower) {
			return r.Intent
		}
	}
	return c.fallback
}

// TargetStatus maps an update message to the status it asks for
func TargetStatus(message string) models.TodoStatus {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, reopenKeywords):
		return models.TodoOpen
	case containsAny(lower, completeKeywords):
		return models.TodoCompleted
	default:
		return models.TodoOpen
	}
}

func containsAny(lower string, keywords []string) bool {
	return firstMatch(lower, keywords) != ""
}

// firstMatch returns the first keyword found in lower, or ""
func firstMatch(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
