// ABOUTME: Root CLI command with global flags and the shared application factory
// ABOUTME: Maps error kinds to process exit codes
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/app"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/config"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
	userFlag     string
)

// openApp builds the application container for a command. Tests replace it.
var openApp = func(logOut io.Writer) (*app.App, error) {
	cfg, err := config.LoadWithDotEnv()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if userFlag != "" {
		cfg.UserID = userFlag
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	case os.Getenv("TODOCHAT_LOG_LEVEL") == "":
		cfg.LogLevel = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg, app.WithLogOutput(logOut)), nil
}

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todochat",
		Short: "Chat with a todo assistant",
		Long: `todochat is a conversational todo assistant.

Tell it what to do in plain words ("add buy milk", "mark buy milk as done",
"show my todos", "delete buy milk"). Every turn is stored with the tool
calls it made, so conversations can be listed, replayed, and exported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "json", "table":
				return nil
			default:
				return fmt.Errorf("--format must be auto, json, or table, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json, or table")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default $XDG_DATA_HOME/todochat/todochat.db)")
	cmd.PersistentFlags().StringVar(&userFlag, "user", "", "User to act as (default $TODOCHAT_USER or $USER)")

	cmd.AddCommand(
		NewChatCmd(),
		NewTodosCmd(),
		NewConversationsCmd(),
		NewHistoryCmd(),
		NewExportCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch chaterr.KindOf(err) {
	case chaterr.KindValidation:
		return 2
	case chaterr.KindAuthorization:
		return 3
	case chaterr.KindNotFound:
		return 4
	default:
		return 1
	}
}

// ErrorMessage is what the CLI prints for err. Typed errors show only their user message.
func ErrorMessage(err error) string {
	var ce *chaterr.Error
	if errors.As(err, &ce) {
		return chaterr.UserMessage(err)
	}
	return err.Error()
}

func jsonOutput() bool {
	return outputFormat == "json"
}
