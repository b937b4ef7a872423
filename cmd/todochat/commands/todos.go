// ABOUTME: CLI command to list todos
// ABOUTME: Reads through the read_todos tool and prints a table or JSON
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

var todosStatus string

// NewTodosCmd creates todos command
func NewTodosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "List your todos",
		Long: `List your todos, most recently updated first.

Archived (deleted) todos are hidden unless asked for with --status.

Examples:
  todochat todos
  todochat todos --status completed
  todochat todos --format json`,
		RunE: runTodos,
	}

	cmd.Flags().StringVar(&todosStatus, "status", "", "Only show open, completed, or archived todos")

	return cmd
}

func runTodos(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.Orchestrator()
	if err != nil {
		return err
	}

	params := map[string]interface{}{}
	if todosStatus != "" {
		params["status"] = todosStatus
	}
	call, err := o.RunTool(cmd.Context(), a.Config().UserID, tools.ReadTodos, params)
	if err != nil {
		return err
	}
	if !call.Result.Success() {
		return fmt.Errorf("%s", call.Result.ErrorMessage())
	}

	todos := call.Result.Todos()
	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), todos)
	}
	if len(todos) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No todos found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSTATUS\tPRIORITY\tTITLE\tUPDATED\n")
	fmt.Fprintf(w, "--\t------\t--------\t-----\t-------\n")
	for _, todo := range todos {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			todo.ID,
			statusMark(todo.Status),
			todo.Priority,
			truncate(todo.Title, 50),
			formatTime(todo.UpdatedAt))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d todo(s)\n", len(todos))
	}
	return nil
}
