// ABOUTME: CLI command to replay a conversation
// ABOUTME: Prints each message and the tool calls behind every assistant reply
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// NewHistoryCmd creates history command
func NewHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <conversation-id>",
		Short: "Show a conversation",
		Long: `Show every message of one of your conversations in order,
with the tool calls each assistant reply made.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.Orchestrator()
	if err != nil {
		return err
	}
	h, err := o.History(cmd.Context(), a.Config().UserID, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, h)
	}

	for _, entry := range h.Messages {
		ts := entry.Timestamp.Local().Format("2006-01-02 15:04:05")
		if entry.Role == models.RoleUser {
			_, _ = userColor.Fprintf(out, "[%s] you: ", ts)
			fmt.Fprintln(out, entry.Content)
			continue
		}
		_, _ = assistantColor.Fprintf(out, "[%s] assistant: %s\n", ts, entry.Content)
		if len(entry.ToolInvocations) > 0 && !quiet {
			calls := make([]string, 0, len(entry.ToolInvocations))
			for _, inv := range entry.ToolInvocations {
				calls = append(calls, fmt.Sprintf("%s (%s)", inv.ToolName, inv.Status))
			}
			_, _ = faintColor.Fprintf(out, "    tools: %s\n", strings.Join(calls, ", "))
		}
	}
	return nil
}
