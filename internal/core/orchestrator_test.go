// ABOUTME: Tests for ConversationOrchestrator end-to-end turns
// ABOUTME: Covers creation, authorization, confirmation gating, timeouts, and rollback
package core

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/audit"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestOrchestrator(t *testing.T, registry *tools.Registry, timeout time.Duration) (*Orchestrator, *sqlite.Storage) {
	t.Helper()
	store, err := sqlite.NewStorageInMemory(sqlite.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	auditor := audit.New(registry, audit.WithTimeout(timeout), audit.WithLogger(quietLogger()))
	return NewOrchestrator(store, auditor, quietLogger()), store
}

func turn(t *testing.T, o *Orchestrator, userID, convID, message string) *TurnResponse {
	t.Helper()
	resp, err := o.ProcessTurn(context.Background(), TurnRequest{UserID: userID, ConversationID: convID, Message: message})
	if err != nil {
		t.Fatalf("ProcessTurn(%q) error = %v", message, err)
	}
	return resp
}

func countMessages(t *testing.T, store *sqlite.Storage, convID string) int {
	t.Helper()
	n, err := store.Messages().CountByConversation(context.Background(), convID)
	if err != nil {
		t.Fatalf("CountByConversation() error = %v", err)
	}
	return n
}

func TestProcessTurn_CreateStartsConversation(t *testing.T) {
	o, store := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	resp := turn(t, o, "alice", "", "Create a todo to buy groceries")

	if resp.ConversationID == "" || resp.AssistantMessageID == "" {
		t.Fatalf("missing ids: %+v", resp)
	}
	if !strings.Contains(resp.Response, "created") {
		t.Errorf("Response = %q, want it to mention created", resp.Response)
	}
	if len(resp.Todos) != 1 || resp.Todos[0].Title != "buy groceries" {
		t.Fatalf("Todos = %+v, want one 'buy groceries'", resp.Todos)
	}
	if resp.Todos[0].CreatedInConversationID != resp.ConversationID {
		t.Errorf("todo provenance = %q, want %q", resp.Todos[0].CreatedInConversationID, resp.ConversationID)
	}
	if resp.MessageCount != 2 || countMessages(t, store, resp.ConversationID) != 2 {
		t.Errorf("MessageCount = %d, want 2", resp.MessageCount)
	}
	if resp.Intent != IntentCreate {
		t.Errorf("Intent = %v, want create", resp.Intent)
	}

	if len(resp.ToolInvocations) != 1 {
		t.Fatalf("ToolInvocations = %d, want 1", len(resp.ToolInvocations))
	}
	inv := resp.ToolInvocations[0]
	if inv.ToolName != tools.CreateTodo || inv.Status != models.InvocationSuccess || inv.MessageID != resp.AssistantMessageID {
		t.Errorf("invocation = %+v", inv)
	}

	msgs, err := store.Messages().ListByConversation(context.Background(), resp.ConversationID)
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Errorf("roles = [%s %s], want [user assistant]", msgs[0].Role, msgs[1].Role)
	}
}

func TestProcessTurn_ContinuesConversation(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	first := turn(t, o, "alice", "", "add water plants")
	second := turn(t, o, "alice", first.ConversationID, "mark water plants as done")

	if second.ConversationID != first.ConversationID {
		t.Errorf("ConversationID changed: %s -> %s", first.ConversationID, second.ConversationID)
	}
	if second.MessageCount != 4 {
		t.Errorf("MessageCount = %d, want 4", second.MessageCount)
	}
	if second.Response != "✓ Marked 'water plants' as complete." {
		t.Errorf("Response = %q", second.Response)
	}
	if second.Todos[0].Status != models.TodoCompleted {
		t.Errorf("Status = %v, want completed", second.Todos[0].Status)
	}

	names := []string{}
	for _, inv := range second.ToolInvocations {
		names = append(names, inv.ToolName)
	}
	if strings.Join(names, ",") != "read_todos,update_todo" {
		t.Errorf("invocations = %v, want read_todos then update_todo", names)
	}
}

func TestProcessTurn_OtherUsersConversation(t *testing.T) {
	o, store := newTestOrchestrator(t, tools.NewRegistry(), time.Second)
	ctx := context.Background()

	created := turn(t, o, "alice", "", "add secret plan")
	before, _ := store.Todos().List(ctx, "alice", sqlite.TodoFilter{})

	_, err := o.ProcessTurn(ctx, TurnRequest{UserID: "bob", ConversationID: created.ConversationID, Message: "delete secret plan"})
	if !chaterr.Is(err, chaterr.KindAuthorization) {
		t.Fatalf("ProcessTurn() error = %v, want authorization", err)
	}

	if n := countMessages(t, store, created.ConversationID); n != 2 {
		t.Errorf("messages = %d, want 2 (nothing persisted for bob)", n)
	}
	after, _ := store.Todos().List(ctx, "alice", sqlite.TodoFilter{})
	if len(after) != len(before) || after[0].Status != before[0].Status || !after[0].UpdatedAt.Equal(before[0].UpdatedAt) {
		t.Errorf("alice's todos changed: %+v -> %+v", before, after)
	}
	bobs, _ := store.Conversations().ListByUser(ctx, "bob")
	if len(bobs) != 0 {
		t.Errorf("bob has %d conversations, want 0", len(bobs))
	}
}

func TestProcessTurn_BulkDeleteNeedsConfirmation(t *testing.T) {
	o, store := newTestOrchestrator(t, tools.NewRegistry(), time.Second)
	ctx := context.Background()

	first := turn(t, o, "alice", "", "add one")
	turn(t, o, "alice", first.ConversationID, "add two")

	resp := turn(t, o, "alice", first.ConversationID, "Delete all my todos")
	if resp.Response != confirmBulkReply {
		t.Errorf("Response = %q, want confirmation request", resp.Response)
	}
	if len(resp.Todos) != 2 {
		t.Errorf("Todos = %d, want 2", len(resp.Todos))
	}
	for _, todo := range resp.Todos {
		if todo.Status != models.TodoOpen {
			t.Errorf("todo %q status = %v, want open", todo.Title, todo.Status)
		}
	}
	if len(resp.ToolInvocations) != 0 {
		t.Errorf("ToolInvocations = %d, want 0", len(resp.ToolInvocations))
	}

	// The gate keeps no state: "yes" is just another message
	yes := turn(t, o, "alice", first.ConversationID, "yes")
	for _, inv := range yes.ToolInvocations {
		if inv.ToolName == tools.DeleteTodo {
			t.Errorf("yes ran %s, want no deletion", inv.ToolName)
		}
	}
	if yes.Intent != IntentCreate {
		t.Errorf("yes classified as %v, want create fallback", yes.Intent)
	}
	open, err := store.Todos().List(ctx, "alice", sqlite.TodoFilter{Status: models.TodoOpen})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(open) != 3 {
		t.Errorf("open todos = %d, want 3 (nothing deleted)", len(open))
	}
}

func TestProcessTurn_OutOfScopeDeclined(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	resp := turn(t, o, "alice", "", "send email to my boss")
	if resp.Response != declineReply {
		t.Errorf("Response = %q, want decline", resp.Response)
	}
	if resp.Scope != VerdictBlocked {
		t.Errorf("Scope = %v, want blocked", resp.Scope)
	}
	if len(resp.ToolInvocations) != 0 || len(resp.Todos) != 0 {
		t.Errorf("blocked turn touched tools: %+v", resp)
	}
	if resp.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", resp.MessageCount)
	}
}

func TestProcessTurn_ResidualStillClassified(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	resp := turn(t, o, "alice", "", "buy milk tomorrow")
	if resp.Scope != VerdictResidual {
		t.Errorf("Scope = %v, want residual", resp.Scope)
	}
	if len(resp.Todos) != 1 || resp.Todos[0].Title != "buy milk tomorrow" {
		t.Errorf("Todos = %+v", resp.Todos)
	}

	question := turn(t, o, "alice", resp.ConversationID, "what is the weather like?")
	if question.Scope != VerdictResidual || question.Response == declineReply {
		t.Errorf("questioning residual message was declined: %+v", question)
	}
}

func TestProcessTurn_NotFoundSuggestsTitle(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	first := turn(t, o, "alice", "", "add water plants")
	resp := turn(t, o, "alice", first.ConversationID, "delete watr plants")

	if !strings.HasPrefix(resp.Response, "Todo 'watr plants' not found.") {
		t.Errorf("Response = %q", resp.Response)
	}
	if !strings.Contains(resp.Response, "Did you mean 'water plants'?") {
		t.Errorf("Response = %q, want suggestion", resp.Response)
	}
	if len(resp.Todos) != 1 || resp.Todos[0].Status != models.TodoOpen {
		t.Errorf("todo changed: %+v", resp.Todos)
	}
}

func TestProcessTurn_DeleteFirstMatchAmongDuplicates(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	first := turn(t, o, "alice", "", "add Gym")
	time.Sleep(2 * time.Millisecond)
	turn(t, o, "alice", first.ConversationID, "add gym")

	resp := turn(t, o, "alice", first.ConversationID, "delete GYM")
	if resp.Response != "✓ Deleted 'GYM'." {
		t.Errorf("Response = %q", resp.Response)
	}
	if len(resp.Todos) != 1 || resp.Todos[0].Title != "Gym" {
		t.Errorf("remaining = %+v, want the older 'Gym' (most recent match is removed first)", resp.Todos)
	}
}

func TestProcessTurn_ClarifyingQuestions(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)

	tests := []struct {
		message string
		want    string
	}{
		{"I finished it", askUpdateTargetReply},
		{"drop it", askDeleteTargetReply},
		{"create a todo", askCreateTitleReply},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			resp := turn(t, o, "alice", "", tt.message)
			if resp.Response != tt.want {
				t.Errorf("Response = %q, want %q", resp.Response, tt.want)
			}
			if len(resp.ToolInvocations) != 0 {
				t.Errorf("ToolInvocations = %d, want 0", len(resp.ToolInvocations))
			}
		})
	}
}

func TestProcessTurn_Validation(t *testing.T) {
	o, store := newTestOrchestrator(t, tools.NewRegistry(), time.Second)
	ctx := context.Background()

	tests := []struct {
		name string
		req  TurnRequest
		want chaterr.Kind
	}{
		{"empty message", TurnRequest{UserID: "alice", Message: "   "}, chaterr.KindValidation},
		{"too long", TurnRequest{UserID: "alice", Message: strings.Repeat("a", models.MaxMessageLength+1)}, chaterr.KindValidation},
		{"no user", TurnRequest{Message: "add x"}, chaterr.KindValidation},
		{"malformed conversation", TurnRequest{UserID: "alice", ConversationID: "nope", Message: "add x"}, chaterr.KindValidation},
		{"unknown conversation", TurnRequest{UserID: "alice", ConversationID: "6f1c3f0e-8d7a-4b8e-9a55-2d7f3c1e9b10", Message: "add x"}, chaterr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.ProcessTurn(ctx, tt.req)
			if chaterr.KindOf(err) != tt.want {
				t.Errorf("ProcessTurn() error = %v, want %v", err, tt.want)
			}
		})
	}

	convs, _ := store.Conversations().ListByUser(ctx, "alice")
	if len(convs) != 0 {
		t.Errorf("rejected turns created %d conversations", len(convs))
	}
}

// stalledCreate replaces create_todo with a version that writes and then never finishes
func stalledCreate() *tools.Tool {
	base, _ := tools.NewRegistry().Lookup(tools.CreateTodo)
	return tools.NewTool(tools.CreateTodo, base.Description, base.Params, base.Result,
		func(ctx context.Context, env tools.Env, args tools.Args) (tools.Result, error) {
			title, _ := args.String("title")
			todo, err := models.NewTodo(env.UserID, title, "", "")
			if err != nil {
				return nil, err
			}
			if err := env.Todos.Create(ctx, todo); err != nil {
				return nil, err
			}
			<-ctx.Done()
			return nil, ctx.Err()
		})
}

func TestProcessTurn_ToolTimeout(t *testing.T) {
	registry := tools.NewRegistry()
	registry.Register(stalledCreate())
	o, store := newTestOrchestrator(t, registry, 50*time.Millisecond)

	resp, err := o.ProcessTurn(context.Background(), TurnRequest{UserID: "alice", Message: "Create a todo to buy groceries"})
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v, want the timeout handled in the reply", err)
	}

	if !strings.Contains(resp.Response, "longer than usual") {
		t.Errorf("Response = %q, want an apology", resp.Response)
	}
	if len(resp.Todos) != 0 {
		t.Errorf("Todos = %+v, want none (abandoned write rolled back)", resp.Todos)
	}
	if len(resp.ToolInvocations) != 1 {
		t.Fatalf("ToolInvocations = %d, want 1", len(resp.ToolInvocations))
	}

	inv := resp.ToolInvocations[0]
	if inv.Status != models.InvocationFailure {
		t.Errorf("Status = %v, want failure", inv.Status)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(inv.Result, &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if result["success"] != false || !strings.Contains(result["error"].(string), "too long") {
		t.Errorf("result = %v", result)
	}
	if countMessages(t, store, resp.ConversationID) != 2 {
		t.Error("turn messages were not persisted")
	}
}

func TestProcessTurn_PersistenceFailureRollsBack(t *testing.T) {
	o, store := newTestOrchestrator(t, tools.NewRegistry(), time.Second)
	_ = store.Close()

	_, err := o.ProcessTurn(context.Background(), TurnRequest{UserID: "alice", Message: "add x"})
	if !chaterr.Is(err, chaterr.KindPersistence) {
		t.Fatalf("ProcessTurn() error = %v, want persistence", err)
	}
	if msg := chaterr.UserMessage(err); strings.Contains(msg, "sql") || !strings.Contains(msg, "try again") {
		t.Errorf("UserMessage() = %q", msg)
	}
}

func TestHistoryAndConversations(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)
	ctx := context.Background()

	first := turn(t, o, "alice", "", "add pay rent")
	turn(t, o, "alice", first.ConversationID, "show my todos")
	other := turn(t, o, "alice", "", "add call mom")

	h, err := o.History(ctx, "alice", first.ConversationID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(h.Messages) != 4 {
		t.Fatalf("History messages = %d, want 4", len(h.Messages))
	}
	if len(h.Messages[1].ToolInvocations) != 1 || h.Messages[1].ToolInvocations[0].ToolName != tools.CreateTodo {
		t.Errorf("first assistant invocations = %+v", h.Messages[1].ToolInvocations)
	}
	if len(h.Messages[0].ToolInvocations) != 0 {
		t.Error("user messages should carry no invocations")
	}

	if _, err := o.History(ctx, "bob", first.ConversationID); !chaterr.Is(err, chaterr.KindAuthorization) {
		t.Errorf("History(bob) error = %v, want authorization", err)
	}

	convs, err := o.Conversations(ctx, "alice")
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if len(convs) != 2 || convs[0].ID != other.ConversationID {
		t.Errorf("Conversations() = %+v, want newest first", convs)
	}
}

func TestRunTool(t *testing.T) {
	o, _ := newTestOrchestrator(t, tools.NewRegistry(), time.Second)
	ctx := context.Background()

	call, err := o.RunTool(ctx, "alice", tools.CreateTodo, map[string]interface{}{"title": "direct"})
	if err != nil {
		t.Fatalf("RunTool() error = %v", err)
	}
	if call.Outcome != audit.OutcomeSuccess {
		t.Errorf("Outcome = %v, want success", call.Outcome)
	}

	list, err := o.RunTool(ctx, "alice", tools.ReadTodos, nil)
	if err != nil {
		t.Fatalf("RunTool() error = %v", err)
	}
	if len(list.Result.Todos()) != 1 {
		t.Errorf("read_todos = %d todos, want 1", len(list.Result.Todos()))
	}

	if _, err := o.RunTool(ctx, "", tools.ReadTodos, nil); !chaterr.Is(err, chaterr.KindValidation) {
		t.Errorf("RunTool(no user) error = %v, want validation", err)
	}
}
