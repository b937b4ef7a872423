// ABOUTME: CLI command to list conversations
// ABOUTME: Shows the user's conversations, most recently updated first
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewConversationsCmd creates conversations command
func NewConversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List your conversations",
		Long: `List your conversations, most recently updated first.

Use an ID with "todochat chat --conversation" to continue one, or with
"todochat history" to replay it.`,
		RunE: runConversations,
	}
}

func runConversations(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.Orchestrator()
	if err != nil {
		return err
	}
	convs, err := o.Conversations(cmd.Context(), a.Config().UserID)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), convs)
	}
	if len(convs) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No conversations found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tUPDATED\tCREATED\n")
	fmt.Fprintf(w, "--\t-------\t-------\n")
	for _, c := range convs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, formatTime(c.LastUpdatedAt), formatTime(c.CreatedAt))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d conversation(s)\n", len(convs))
	}
	return nil
}
