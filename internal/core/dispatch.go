// ABOUTME: Per-turn dispatch from a classified intent to audited tool calls
// ABOUTME: Collects every call so it can be audited once the assistant message exists
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/audit"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

// dispatcher lives for one turn
type dispatcher struct {
	auditor *audit.Auditor
	env     tools.Env
	log     logrus.FieldLogger
	calls   []audit.Call
}

// invoke runs a tool through the auditor. Tool-kind errors become failure
// results so the turn still completes; anything else aborts the turn.
func (d *dispatcher) invoke(ctx context.Context, name string, params map[string]interface{}) (tools.Result, error) {
	call, err := d.auditor.Invoke(ctx, d.env, name, params)
	if err != nil && chaterr.KindOf(err) != chaterr.KindTool {
		return nil, err
	}
	d.calls = append(d.calls, call)
	if err != nil {
		d.log.WithError(err).WithField("tool_name", name).Warn("tool failed, replying with apology")
	}
	return call.Result, nil
}

// failureText turns a failed result into a user-facing sentence
func failureText(res tools.Result) string {
	if msg := res.UserMessage(); msg != "" {
		return msg
	}
	return TranslateToolError(res.ErrorMessage())
}

func (d *dispatcher) dispatch(ctx context.Context, intent Intent, message string) (string, error) {
	switch intent {
	case IntentDelete:
		return d.deleteByTitle(ctx, message)
	case IntentUpdate:
		return d.updateByTitle(ctx, message)
	case IntentRead:
		return d.list(ctx)
	default:
		return d.create(ctx, message)
	}
}

func (d *dispatcher) create(ctx context.Context, message string) (string, error) {
	title := ExtractCreateTitle(message)
	if title == "" {
		return askCreateTitleReply, nil
	}

	res, err := d.invoke(ctx, tools.CreateTodo, map[string]interface{}{"title": title})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return fmt.Sprintf("I couldn't create the todo: %s", failureText(res)), nil
	}
	return createdReply(res.Todo().Title), nil
}

func (d *dispatcher) list(ctx context.Context) (string, error) {
	res, err := d.invoke(ctx, tools.ReadTodos, map[string]interface{}{})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return fmt.Sprintf("I couldn't retrieve your todos: %s", failureText(res)), nil
	}
	return listReply(res.Todos()), nil
}

// findByTitle reads the visible todos and returns the first case-insensitive exact match
// and otherwise the reply to send instead
func (d *dispatcher) findByTitle(ctx context.Context, title string) (*models.Todo, string, error) {
	res, err := d.invoke(ctx, tools.ReadTodos, map[string]interface{}{})
	if err != nil {
		return nil, "", err
	}
	if !res.Success() {
		return nil, fmt.Sprintf("I couldn't retrieve your todos: %s", failureText(res)), nil
	}

	todos := res.Todos()
	for i := range todos {
		if strings.EqualFold(todos[i].Title, title) {
			return &todos[i], "", nil
		}
	}
	return nil, notFoundReply(title, todos), nil
}

func (d *dispatcher) updateByTitle(ctx context.Context, message string) (string, error) {
	status := TargetStatus(message)
	title := ExtractTargetTitle(message, IntentUpdate)
	if title == "" {
		return askUpdateTargetReply, nil
	}

	todo, reply, err := d.findByTitle(ctx, title)
	if err != nil || todo == nil {
		return reply, err
	}

	res, err := d.invoke(ctx, tools.UpdateTodo, map[string]interface{}{"id": todo.ID, "status": string(status)})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return fmt.Sprintf("I couldn't update the todo: %s", failureText(res)), nil
	}
	return markedReply(title, status), nil
}

func (d *dispatcher) deleteByTitle(ctx context.Context, message string) (string, error) {
	title := ExtractTargetTitle(message, IntentDelete)
	if title == "" {
		return askDeleteTargetReply, nil
	}

	todo, reply, err := d.findByTitle(ctx, title)
	if err != nil || todo == nil {
		return reply, err
	}

	res, err := d.invoke(ctx, tools.DeleteTodo, map[string]interface{}{"id": todo.ID})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return fmt.Sprintf("I couldn't delete the todo: %s", failureText(res)), nil
	}
	return deletedReply(title), nil
}
