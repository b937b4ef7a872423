// ABOUTME: CLI command to export todos and conversations
// ABOUTME: Writes a YAML or Markdown snapshot for the current user
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	exportType   string
	exportOutput string
)

// NewExportCmd creates export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export todos and conversations",
		Long: `Export your todos and full conversation history to a file.

YAML keeps every field and is suitable for backups. Markdown is meant
for reading.

Examples:
  todochat export
  todochat export --type markdown --output todos.md`,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportType, "type", "yaml", "Export type: yaml or markdown")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default todochat-export.yaml or .md)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	var ext string
	switch exportType {
	case "yaml", "yml":
		ext = "yaml"
	case "markdown", "md":
		ext = "md"
	default:
		return fmt.Errorf("--type must be yaml or markdown, got %q", exportType)
	}
	path := exportOutput
	if path == "" {
		path = "todochat-export." + ext
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.Storage()
	if err != nil {
		return err
	}
	userID := a.Config().UserID

	if ext == "yaml" {
		err = store.ExportToYAML(cmd.Context(), userID, path)
	} else {
		err = store.ExportToMarkdown(cmd.Context(), userID, path)
	}
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	}
	return nil
}
