// ABOUTME: CLI command to chat with the todo assistant
// ABOUTME: Sends one message or runs an interactive session on stdin
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/core"
)

var chatConversation string

// NewChatCmd creates chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the todo assistant",
		Long: `Send a message to the todo assistant.

With a message argument, one turn is processed and the reply printed.
Without one, an interactive session reads messages from stdin until
"exit" or end of input. All messages of a session share one conversation.

Examples:
  todochat chat "add buy milk"
  todochat chat --conversation 6f1c... "mark buy milk as done"
  todochat chat`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatConversation, "conversation", "", "Conversation ID to continue")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.Orchestrator()
	if err != nil {
		return err
	}
	s := &chatSession{
		orchestrator:   o,
		userID:         a.Config().UserID,
		conversationID: chatConversation,
		out:            cmd.OutOrStdout(),
	}

	if len(args) > 0 {
		return s.send(cmd.Context(), strings.Join(args, " "))
	}
	return s.interactive(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr())
}

type chatSession struct {
	orchestrator   *core.Orchestrator
	userID         string
	conversationID string
	out            io.Writer
}

func (s *chatSession) send(ctx context.Context, message string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := s.orchestrator.ProcessTurn(ctx, core.TurnRequest{
		UserID:         s.userID,
		ConversationID: s.conversationID,
		Message:        message,
	})
	if err != nil {
		return err
	}

	started := s.conversationID == ""
	s.conversationID = resp.ConversationID

	if jsonOutput() {
		return printJSON(s.out, resp)
	}
	_, _ = assistantColor.Fprintln(s.out, resp.Response)
	if started && !quiet {
		_, _ = faintColor.Fprintf(s.out, "conversation: %s\n", resp.ConversationID)
	}
	return nil
}

func (s *chatSession) interactive(ctx context.Context, in io.Reader, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if !quiet {
			_, _ = userColor.Fprint(s.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := s.send(ctx, line); err != nil {
			// Bad input keeps the session alive; anything else ends it
			if chaterr.Is(err, chaterr.KindValidation) || chaterr.Is(err, chaterr.KindTimeout) {
				fmt.Fprintf(errOut, "%s\n", ErrorMessage(err))
				continue
			}
			return err
		}
	}
}
