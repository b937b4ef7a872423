// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Time formatting, truncation, JSON printing, and colored output helpers
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

var (
	assistantColor = color.New(color.FgCyan)
	userColor      = color.New(color.FgGreen, color.Bold)
	faintColor     = color.New(color.Faint)
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// statusMark renders a todo status as a checkbox
func statusMark(s models.TodoStatus) string {
	switch s {
	case models.TodoCompleted:
		return "[x]"
	case models.TodoArchived:
		return "[-]"
	default:
		return "[ ]"
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
