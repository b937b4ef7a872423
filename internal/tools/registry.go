// ABOUTME: Tool registry mapping tool names to declared schemas and handlers
// ABOUTME: Built once at startup and passed explicitly to the auditor and MCP server
package tools

import (
	"context"
	"errors"
	"sort"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
)

// Tool names
const (
	CreateTodo = "create_todo"
	ReadTodos  = "read_todos"
	UpdateTodo = "update_todo"
	DeleteTodo = "delete_todo"
)

// TodoStore is the persistence a tool needs. *sqlite.TodoStore satisfies it.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	Get(ctx context.Context, userID string, id int64) (*models.Todo, error)
	List(ctx context.Context, userID string, filter sqlite.TodoFilter) ([]models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
}

// Savepointer scopes a tool call's writes so they can be discarded. *sqlite.Tx satisfies it.
type Savepointer interface {
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
}

// Env is the per-call execution environment
type Env struct {
	UserID         string
	ConversationID string
	Todos          TodoStore
	Savepoints     Savepointer // optional
}

// Handler runs a tool body against validated arguments
type Handler func(ctx context.Context, env Env, args Args) (Result, error)

// Tool is a named, schema-constrained operation
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Result      ResultContract
	handler     Handler
}

// NewTool declares a tool with a custom handler
func NewTool(name, description string, params []Param, result ResultContract, handler Handler) *Tool {
	return &Tool{Name: name, Description: description, Params: params, Result: result, handler: handler}
}

// Registry holds the available tools
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry builds a registry with the four todo tools
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]*Tool)}
	for _, t := range todoTools() {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool
func (r *Registry) Register(t *Tool) {
	r.tools[t.Name] = t
}

// Lookup returns the tool with the given name
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns every registered tool sorted by name
func (r *Registry) Tools() []*Tool {
	out := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute validates params and runs the named tool. Invalid params produce a
// failure result, not an error. Errors are reserved for unknown tools and
// store failures.
func (r *Registry) Execute(ctx context.Context, env Env, name string, params map[string]interface{}) (Result, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, chaterr.Newf(chaterr.KindTool, "tools.execute", "unknown tool: %s", name)
	}
	if env.UserID == "" {
		return nil, chaterr.New(chaterr.KindValidation, "tools."+name, "user id is required")
	}
	if env.Todos == nil {
		return nil, chaterr.New(chaterr.KindTool, "tools."+name, "no todo store in environment")
	}

	args, err := validateArgs("tools."+name, t.Params, params)
	if err != nil {
		var ce *chaterr.Error
		if errors.As(err, &ce) && ce.Kind == chaterr.KindValidation {
			return fail(t, chaterr.KindValidation, ce.Msg), nil
		}
		return nil, err
	}
	return t.handler(ctx, env, args)
}
