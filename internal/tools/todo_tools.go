// ABOUTME: The four todo tools: create, read, update, and soft delete
// ABOUTME: Business failures become failure results; store failures become persistence errors
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
)

func statusNames() []string {
	out := make([]string, 0, len(models.TodoStatuses))
	for _, s := range models.TodoStatuses {
		out = append(out, string(s))
	}
	return out
}

func priorityNames() []string {
	out := make([]string, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		out = append(out, string(p))
	}
	return out
}

func todoTools() []*Tool {
	create := &Tool{
		Name:        CreateTodo,
		Description: "Create a new todo item",
		Params: []Param{
			{Name: "title", Type: TypeString, Description: "Todo title", Required: true, NonBlank: true, MaxLength: models.MaxTitleLength},
			{Name: "description", Type: TypeString, Description: "Optional details", MaxLength: models.MaxDescriptionLength},
			{Name: "priority", Type: TypeString, Description: "low, medium, or high", Enum: priorityNames(), Default: string(models.PriorityMedium)},
		},
		Result: ResultContract{Always: []string{FieldTodo}, OnSuccess: []string{FieldTodo}},
	}
	create.handler = func(ctx context.Context, env Env, args Args) (Result, error) {
		return createTodo(ctx, create, env, args)
	}

	read := &Tool{
		Name:        ReadTodos,
		Description: "List the caller's todos, most recently updated first. Archived todos are hidden unless requested by status.",
		Params: []Param{
			{Name: "status", Type: TypeString, Description: "Only return todos with this status", Enum: statusNames()},
		},
		Result: ResultContract{OnSuccess: []string{FieldTodos, FieldCount}},
	}
	read.handler = func(ctx context.Context, env Env, args Args) (Result, error) {
		return readTodos(ctx, read, env, args)
	}

	update := &Tool{
		Name:        UpdateTodo,
		Description: "Update an existing todo. Unspecified fields are left unchanged.",
		Params: []Param{
			{Name: "id", Type: TypeID, Description: "Todo identifier", Required: true},
			{Name: "title", Type: TypeString, Description: "New title", NonBlank: true, MaxLength: models.MaxTitleLength},
			{Name: "description", Type: TypeString, Description: "New description", MaxLength: models.MaxDescriptionLength},
			{Name: "status", Type: TypeString, Description: "open, completed, or archived", Enum: statusNames()},
			{Name: "priority", Type: TypeString, Description: "low, medium, or high", Enum: priorityNames()},
		},
		Result: ResultContract{Always: []string{FieldTodo}, OnSuccess: []string{FieldTodo}},
	}
	update.handler = func(ctx context.Context, env Env, args Args) (Result, error) {
		return updateTodo(ctx, update, env, args)
	}

	del := &Tool{
		Name:        DeleteTodo,
		Description: "Delete (archive) a todo",
		Params: []Param{
			{Name: "id", Type: TypeID, Description: "Todo identifier", Required: true},
		},
		Result: ResultContract{Always: []string{FieldDeletedID}, OnSuccess: []string{FieldDeletedID}},
	}
	del.handler = func(ctx context.Context, env Env, args Args) (Result, error) {
		return deleteTodo(ctx, del, env, args)
	}

	return []*Tool{create, read, update, del}
}

// validationFailure turns a model validation error into a failure result
func validationFailure(t *Tool, err error) (Result, error) {
	var ce *chaterr.Error
	if errors.As(err, &ce) && ce.Kind == chaterr.KindValidation {
		return fail(t, chaterr.KindValidation, ce.Msg), nil
	}
	return nil, err
}

func persistence(t *Tool, err error) error {
	return chaterr.Wrap(chaterr.KindPersistence, "tools."+t.Name, err)
}

func notFound(t *Tool, id int64) Result {
	return fail(t, chaterr.KindNotFound, fmt.Sprintf("Todo %d not found", id))
}

func createTodo(ctx context.Context, t *Tool, env Env, args Args) (Result, error) {
	title, _ := args.String("title")
	description, _ := args.String("description")
	priority, _ := args.String("priority")

	todo, err := models.NewTodo(env.UserID, title, description, models.Priority(priority))
	if err != nil {
		return validationFailure(t, err)
	}
	todo.CreatedInConversationID = env.ConversationID

	if err := env.Todos.Create(ctx, todo); err != nil {
		return nil, persistence(t, err)
	}
	return ok(Result{FieldTodo: todo}), nil
}

func readTodos(ctx context.Context, t *Tool, env Env, args Args) (Result, error) {
	status, _ := args.String("status")

	todos, err := env.Todos.List(ctx, env.UserID, sqlite.TodoFilter{Status: models.TodoStatus(status)})
	if err != nil {
		return nil, persistence(t, err)
	}
	return ok(Result{FieldTodos: todos, FieldCount: len(todos)}), nil
}

func updateTodo(ctx context.Context, t *Tool, env Env, args Args) (Result, error) {
	id := args.ID("id")
	todo, err := env.Todos.Get(ctx, env.UserID, id)
	if err != nil {
		return nil, persistence(t, err)
	}
	if todo == nil {
		return notFound(t, id), nil
	}
	if todo.IsArchived() {
		return fail(t, chaterr.KindValidation, fmt.Sprintf("Todo %d is archived and cannot be changed", id)), nil
	}

	if title, set := args.String("title"); set {
		clean, err := models.ValidateTitle(title)
		if err != nil {
			return validationFailure(t, err)
		}
		todo.Title = clean
	}
	if description, set := args.String("description"); set {
		clean, err := models.ValidateDescription(description)
		if err != nil {
			return validationFailure(t, err)
		}
		todo.Description = clean
	}
	if priority, set := args.String("priority"); set {
		todo.Priority = models.Priority(priority)
	}

	next := todo.Status
	if status, set := args.String("status"); set {
		next = models.TodoStatus(status)
	}
	// A self-transition still refreshes updated_at
	if err := todo.TransitionTo(next, time.Now().UTC()); err != nil {
		return validationFailure(t, err)
	}

	if err := env.Todos.Update(ctx, todo); err != nil {
		return nil, persistence(t, err)
	}
	return ok(Result{FieldTodo: todo}), nil
}

func deleteTodo(ctx context.Context, t *Tool, env Env, args Args) (Result, error) {
	id := args.ID("id")
	todo, err := env.Todos.Get(ctx, env.UserID, id)
	if err != nil {
		return nil, persistence(t, err)
	}
	if todo == nil {
		return notFound(t, id), nil
	}
	if todo.IsArchived() {
		return ok(Result{FieldDeletedID: id}), nil
	}

	if err := todo.Archive(time.Now().UTC()); err != nil {
		return validationFailure(t, err)
	}
	if err := env.Todos.Update(ctx, todo); err != nil {
		return nil, persistence(t, err)
	}
	return ok(Result{FieldDeletedID: id}), nil
}
