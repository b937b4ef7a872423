// ABOUTME: Quote-aware title extraction from free-text messages
// ABOUTME: Empty results tell the caller to ask a clarifying question
package core

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

var (
	singleQuoted = regexp.MustCompile(`'([^']+)'`)
	doubleQuoted = regexp.MustCompile(`"([^"]+)"`)
)

// updateStops end the title in "mark X as done" style messages
var updateStops = []string{" as done", " as complete", " as not complete", " as pending", " as open"}

var (
	politePrefixes = []string{"please", "can you", "could you", "i want to", "i need to", "i'd like to"}
	createVerbs    = []string{"create", "add", "make", "new", "write", "start"}
	createFillers  = []string{"a new todo", "a new task", "a todo", "a task", "new todo", "new task", "todo:", "task:", "todo", "task", "an item", "item", "to", "for", "called", "named", ":"}
)

func quoted(message string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(message); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				return s
			}
		}
	}
	return ""
}

// after returns the text following the first occurrence of kw, case-insensitively
func after(message, kw string) (string, bool) {
	lower := strings.ToLower(message)
	idx := strings.Index(lower, kw)
	if idx < 0 {
		return "", false
	}
	src := message
	if len(lower) != len(message) {
		src = lower
	}
	return strings.TrimSpace(src[idx+len(kw):]), true
}

// ExtractTargetTitle finds the todo an update or delete message refers to
func ExtractTargetTitle(message string, intent Intent) string {
	if s := quoted(message, singleQuoted, doubleQuoted); s != "" {
		return s
	}

	switch intent {
	case IntentUpdate:
		text, ok := after(message, "mark")
		if !ok {
			return ""
		}
		lower := strings.ToLower(text)
		for _, stop := range updateStops {
			if idx := strings.Index(lower, stop); idx >= 0 {
				return strings.TrimSpace(text[:idx])
			}
		}
		return text
	case IntentDelete:
		for _, kw := range []string{"delete", "remove"} {
			if text, ok := after(message, kw); ok {
				return text
			}
		}
	}
	return ""
}

// ExtractCreateTitle pulls a title out of a create message:
// "Create a todo to buy groceries" yields "buy groceries"
func ExtractCreateTitle(message string) string {
	if s := quoted(message, doubleQuoted, singleQuoted); s != "" {
		return truncateRunes(s, models.MaxTitleLength)
	}

	text := strings.TrimSpace(message)
	text = stripRepeated(text, politePrefixes)
	text, _ = stripOnce(text, createVerbs)
	text = stripRepeated(text, createFillers)
	text = strings.TrimRight(text, " .!?")
	return truncateRunes(strings.TrimSpace(text), models.MaxTitleLength)
}

// stripOnce removes one leading word-bounded prefix
func stripOnce(text string, prefixes []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range prefixes {
		if !strings.HasPrefix(lower, p) {
			continue
		}
		rest := text[len(p):]
		if strings.HasSuffix(p, ":") || rest == "" || rest[0] == ' ' || rest[0] == ':' || rest[0] == ',' {
			return strings.TrimLeft(rest, " :,"), true
		}
	}
	return text, false
}

func stripRepeated(text string, prefixes []string) string {
	for {
		next, ok := stripOnce(text, prefixes)
		if !ok {
			return text
		}
		text = next
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
