// ABOUTME: ConversationOrchestrator runs one chat turn inside a single transaction
// ABOUTME: Resolves the conversation, dispatches the intent, persists messages, and audits tool calls
package core

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/audit"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

// TurnRequest is one inbound chat message from an authenticated user
type TurnRequest struct {
	UserID         string
	ConversationID string // empty starts a new conversation
	Message        string
}

// TurnResponse is the consolidated state after a turn
type TurnResponse struct {
	ConversationID     string                  `json:"conversation_id"`
	AssistantMessageID string                  `json:"assistant_message_id"`
	Response           string                  `json:"response"`
	Todos              []models.Todo           `json:"todos"`
	ToolInvocations    []models.ToolInvocation `json:"tool_invocations"`
	MessageCount       int                     `json:"message_count"`
	Intent             Intent                  `json:"intent,omitempty"`
	Scope              Verdict                 `json:"scope"`
}

// Orchestrator owns the per-request flow
type Orchestrator struct {
	storage    *sqlite.Storage
	auditor    *audit.Auditor
	classifier *Classifier
	guard      *ScopeGuard
	gate       *ConfirmationGate
	log        logrus.FieldLogger
}

// NewOrchestrator creates an Orchestrator with the default classifier, guard, and gate
func NewOrchestrator(store *sqlite.Storage, auditor *audit.Auditor, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		storage:    store,
		auditor:    auditor,
		classifier: NewClassifier(),
		guard:      NewScopeGuard(),
		gate:       NewConfirmationGate(),
		log:        log.WithField("component", "orchestrator"),
	}
}

func persistenceErr(op string, err error) error {
	return chaterr.Wrap(chaterr.KindPersistence, op, err)
}

func validateTurn(req TurnRequest) (string, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return "", chaterr.New(chaterr.KindValidation, "turn.validate", "user id is required")
	}
	if err := models.ValidateMessageContent(req.Message); err != nil {
		return "", err
	}
	if req.ConversationID == "" {
		return "", nil
	}
	return models.ParseConversationID(req.ConversationID)
}

// ProcessTurn runs VALIDATE_INPUT, RESOLVE_CONVERSATION, LOAD_HISTORY,
// CLASSIFY_AND_DISPATCH, PERSIST_TURN and ASSEMBLE_RESPONSE. Everything after
// validation shares one transaction; any error rolls all of it back.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	convID, err := validateTurn(req)
	if err != nil {
		return nil, err
	}

	var resp *TurnResponse
	err = o.storage.WithTx(ctx, func(tx *sqlite.Tx) error {
		var err error
		resp, err = o.runTurn(ctx, tx, req, convID)
		return err
	})
	if err != nil {
		if chaterr.KindOf(err) == chaterr.KindUnknown {
			err = persistenceErr("turn", err)
		}
		o.log.WithError(err).WithField("user_id", req.UserID).Error("turn failed")
		return nil, err
	}
	return resp, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, tx *sqlite.Tx, req TurnRequest, convID string) (*TurnResponse, error) {
	conv, err := o.resolveConversation(ctx, tx, req.UserID, convID)
	if err != nil {
		return nil, err
	}
	log := o.log.WithFields(logrus.Fields{"user_id": req.UserID, "conversation_id": conv.ID})

	history, err := tx.Messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, persistenceErr("turn.history", err)
	}
	log.WithField("history", len(history)).Debug("loaded conversation history")

	d := &dispatcher{
		auditor: o.auditor,
		env:     tools.Env{UserID: req.UserID, ConversationID: conv.ID, Todos: tx.Todos, Savepoints: tx},
		log:     log,
	}
	reply, intent, scope, err := o.classifyAndDispatch(ctx, d, req.Message, log)
	if err != nil {
		return nil, err
	}

	// PERSIST_TURN
	now := time.Now().UTC()
	userMsg, err := models.NewMessage(conv.ID, models.RoleUser, req.Message, now)
	if err != nil {
		return nil, err
	}
	assistantMsg, err := models.NewMessage(conv.ID, models.RoleAssistant, truncateRunes(reply, models.MaxMessageLength), now)
	if err != nil {
		return nil, err
	}
	if err := tx.Messages.Append(ctx, userMsg); err != nil {
		return nil, persistenceErr("turn.user_message", err)
	}
	if err := tx.Messages.Append(ctx, assistantMsg); err != nil {
		return nil, persistenceErr("turn.assistant_message", err)
	}
	if err := tx.Conversations.Touch(ctx, conv.ID, now); err != nil {
		return nil, persistenceErr("turn.touch", err)
	}
	for _, call := range d.calls {
		o.auditor.Record(ctx, tx.Messages, tx.Invocations, assistantMsg.ID, call)
	}

	// ASSEMBLE_RESPONSE
	todos, err := tx.Todos.List(ctx, req.UserID, sqlite.TodoFilter{})
	if err != nil {
		return nil, persistenceErr("turn.todos", err)
	}
	invocations, err := tx.Invocations.ListByMessage(ctx, assistantMsg.ID)
	if err != nil {
		return nil, persistenceErr("turn.invocations", err)
	}
	count, err := tx.Messages.CountByConversation(ctx, conv.ID)
	if err != nil {
		return nil, persistenceErr("turn.count", err)
	}
	if invocations == nil {
		invocations = []models.ToolInvocation{}
	}

	log.WithFields(logrus.Fields{"intent": intent, "scope": scope, "tool_calls": len(d.calls)}).Info("turn processed")
	return &TurnResponse{
		ConversationID:     conv.ID,
		AssistantMessageID: assistantMsg.ID,
		Response:           assistantMsg.Content,
		Todos:              todos,
		ToolInvocations:    invocations,
		MessageCount:       count,
		Intent:             intent,
		Scope:              scope,
	}, nil
}

func (o *Orchestrator) resolveConversation(ctx context.Context, tx *sqlite.Tx, userID, convID string) (*models.Conversation, error) {
	if convID == "" {
		conv, err := models.NewConversation(userID)
		if err != nil {
			return nil, err
		}
		if err := tx.Conversations.Create(ctx, conv); err != nil {
			return nil, persistenceErr("turn.conversation", err)
		}
		return conv, nil
	}

	conv, err := tx.Conversations.Get(ctx, convID)
	if err != nil {
		return nil, persistenceErr("turn.conversation", err)
	}
	if conv == nil {
		return nil, chaterr.Newf(chaterr.KindNotFound, "turn.conversation", "conversation %s not found", convID).
			WithUserMessage("Conversation not found.")
	}
	if !conv.OwnedBy(userID) {
		return nil, chaterr.Newf(chaterr.KindAuthorization, "turn.conversation", "conversation %s is not owned by %s", convID, userID)
	}
	return conv, nil
}

func (o *Orchestrator) classifyAndDispatch(ctx context.Context, d *dispatcher, message string, log logrus.FieldLogger) (string, Intent, Verdict, error) {
	scope := o.guard.Check(message)
	switch scope.Verdict {
	case VerdictBlocked:
		log.WithField("keyword", scope.Keyword).Info("declined out-of-scope message")
		return declineReply, "", scope.Verdict, nil
	case VerdictResidual:
		log.WithField("reason", scope.Reason).Debug("message matched neither scope list")
	}

	if phrase, ok := o.gate.Intercepts(message); ok {
		log.WithField("phrase", phrase).Info("bulk destructive request needs confirmation")
		return confirmBulkReply, "", scope.Verdict, nil
	}

	intent := o.classifier.Classify(message)
	log.WithField("intent", intent).Info("classified message")

	reply, err := d.dispatch(ctx, intent, message)
	return reply, intent, scope.Verdict, err
}

// RunTool executes one tool directly for userID in its own transaction.
// No audit row is written because there is no assistant message to attach it to.
func (o *Orchestrator) RunTool(ctx context.Context, userID, name string, params map[string]interface{}) (audit.Call, error) {
	if strings.TrimSpace(userID) == "" {
		return audit.Call{}, chaterr.New(chaterr.KindValidation, "tool.run", "user id is required")
	}

	var call audit.Call
	err := o.storage.WithTx(ctx, func(tx *sqlite.Tx) error {
		env := tools.Env{UserID: userID, Todos: tx.Todos, Savepoints: tx}
		var err error
		call, err = o.auditor.Invoke(ctx, env, name, params)
		return err
	})
	if err != nil && chaterr.KindOf(err) == chaterr.KindUnknown {
		err = persistenceErr("tool.run", err)
	}
	return call, err
}

// ConversationHistory is a conversation with its messages and their tool calls
type ConversationHistory struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []HistoryEntry      `json:"messages"`
}

// HistoryEntry is one message and the invocations attached to it
type HistoryEntry struct {
	models.Message
	ToolInvocations []models.ToolInvocation `json:"tool_invocations,omitempty"`
}

// History returns a conversation owned by userID in message order
func (o *Orchestrator) History(ctx context.Context, userID, conversationID string) (*ConversationHistory, error) {
	convID, err := models.ParseConversationID(conversationID)
	if err != nil {
		return nil, err
	}

	conv, err := o.storage.Conversations().Get(ctx, convID)
	if err != nil {
		return nil, persistenceErr("history.conversation", err)
	}
	if conv == nil {
		return nil, chaterr.Newf(chaterr.KindNotFound, "history", "conversation %s not found", convID).
			WithUserMessage("Conversation not found.")
	}
	if !conv.OwnedBy(userID) {
		return nil, chaterr.Newf(chaterr.KindAuthorization, "history", "conversation %s is not owned by %s", convID, userID)
	}

	msgs, err := o.storage.Messages().ListByConversation(ctx, convID)
	if err != nil {
		return nil, persistenceErr("history.messages", err)
	}

	h := &ConversationHistory{Conversation: *conv, Messages: make([]HistoryEntry, 0, len(msgs))}
	for _, msg := range msgs {
		entry := HistoryEntry{Message: msg}
		if msg.Role == models.RoleAssistant {
			invs, err := o.storage.Invocations().ListByMessage(ctx, msg.ID)
			if err != nil {
				return nil, persistenceErr("history.invocations", err)
			}
			entry.ToolInvocations = invs
		}
		h.Messages = append(h.Messages, entry)
	}
	return h, nil
}

// Conversations lists userID's conversations, most recently updated first
func (o *Orchestrator) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	convs, err := o.storage.Conversations().ListByUser(ctx, userID)
	if err != nil {
		return nil, persistenceErr("conversations", err)
	}
	return convs, nil
}
