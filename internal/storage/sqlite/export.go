// ABOUTME: Export functionality for a user's todos and conversations
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// ExportData represents the complete exportable data structure for one user
type ExportData struct {
	Version       string               `yaml:"version" json:"version"`
	ExportedAt    string               `yaml:"exported_at" json:"exported_at"`
	Tool          string               `yaml:"tool" json:"tool"`
	UserID        string               `yaml:"user_id" json:"user_id"`
	Todos         []ExportTodo         `yaml:"todos,omitempty" json:"todos,omitempty"`
	Conversations []ExportConversation `yaml:"conversations,omitempty" json:"conversations,omitempty"`
}

// ExportTodo represents a todo for export
type ExportTodo struct {
	ID          int64  `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Status      string `yaml:"status" json:"status"`
	Priority    string `yaml:"priority" json:"priority"`
	CreatedAt   string `yaml:"created_at" json:"created_at"`
	UpdatedAt   string `yaml:"updated_at" json:"updated_at"`
}

// ExportConversation represents a conversation with its messages for export
type ExportConversation struct {
	ID            string          `yaml:"id" json:"id"`
	CreatedAt     string          `yaml:"created_at" json:"created_at"`
	LastUpdatedAt string          `yaml:"last_updated_at" json:"last_updated_at"`
	Messages      []ExportMessage `yaml:"messages" json:"messages"`
}

// ExportMessage represents a message and the tools it invoked
type ExportMessage struct {
	Role      string   `yaml:"role" json:"role"`
	Content   string   `yaml:"content" json:"content"`
	Timestamp string   `yaml:"timestamp" json:"timestamp"`
	Tools     []string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// Export collects every todo (archived included) and conversation of a user
func (s *Storage) Export(ctx context.Context, userID string) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "todochat",
		UserID:     userID,
	}

	for _, status := range models.TodoStatuses {
		todos, err := s.todos.List(ctx, userID, TodoFilter{Status: status})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s todos: %w", status, err)
		}
		for _, todo := range todos {
			data.Todos = append(data.Todos, ExportTodo{
				ID:          todo.ID,
				Title:       todo.Title,
				Description: todo.Description,
				Status:      string(todo.Status),
				Priority:    string(todo.Priority),
				CreatedAt:   todo.CreatedAt.Format(time.RFC3339),
				UpdatedAt:   todo.UpdatedAt.Format(time.RFC3339),
			})
		}
	}

	convs, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	for _, conv := range convs {
		msgs, err := s.messages.ListByConversation(ctx, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		exportConv := ExportConversation{
			ID:            conv.ID,
			CreatedAt:     conv.CreatedAt.Format(time.RFC3339),
			LastUpdatedAt: conv.LastUpdatedAt.Format(time.RFC3339),
			Messages:      make([]ExportMessage, 0, len(msgs)),
		}

		for _, msg := range msgs {
			em := ExportMessage{
				Role:      string(msg.Role),
				Content:   msg.Content,
				Timestamp: msg.Timestamp.Format(time.RFC3339),
			}
			invs, err := s.invocations.ListByMessage(ctx, msg.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list invocations: %w", err)
			}
			for _, inv := range invs {
				em.Tools = append(em.Tools, fmt.Sprintf("%s (%s)", inv.ToolName, inv.Status))
			}
			exportConv.Messages = append(exportConv.Messages, em)
		}

		data.Conversations = append(data.Conversations, exportConv)
	}

	return data, nil
}

// ExportToYAML exports a user's data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, userID, outputPath string) error {
	data, err := s.Export(ctx, userID)
	if err != nil {
		return err
	}

	file, err := createExportFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

// ExportToMarkdown exports a user's data to a Markdown file
func (s *Storage) ExportToMarkdown(ctx context.Context, userID, outputPath string) error {
	data, err := s.Export(ctx, userID)
	if err != nil {
		return err
	}

	file, err := createExportFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writeMarkdown(file, data)
	return nil
}

func createExportFile(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

func writeMarkdown(w io.Writer, data *ExportData) {
	_, _ = fmt.Fprintf(w, "# Todo Export - %s\n\n", data.UserID)
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	if len(data.Todos) > 0 {
		_, _ = fmt.Fprintln(w, "## Todos")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "| ID | Title | Status | Priority |")
		_, _ = fmt.Fprintln(w, "|----|-------|--------|----------|")
		for _, todo := range data.Todos {
			_, _ = fmt.Fprintf(w, "| %d | %s | %s | %s |\n", todo.ID, escapeCell(todo.Title), todo.Status, todo.Priority)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Conversations) > 0 {
		_, _ = fmt.Fprintln(w, "## Conversations")
		_, _ = fmt.Fprintln(w)
		for _, conv := range data.Conversations {
			_, _ = fmt.Fprintf(w, "### %s (%s)\n\n", conv.ID, conv.LastUpdatedAt)
			for _, msg := range conv.Messages {
				label := "User"
				if msg.Role == string(models.RoleAssistant) {
					label = "Assistant"
				}
				_, _ = fmt.Fprintf(w, "**%s:** %s\n\n", label, msg.Content)
				if len(msg.Tools) > 0 {
					_, _ = fmt.Fprintf(w, "*Tools: %s*\n\n", strings.Join(msg.Tools, ", "))
				}
			}
			_, _ = fmt.Fprintln(w, "---")
			_, _ = fmt.Fprintln(w)
		}
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
