// ABOUTME: Normalized result envelope returned by every tool
// ABOUTME: Provides typed accessors over the serialized map form
package tools

import (
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// Envelope field names
const (
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldErrorKind   = "error_kind"
	FieldUserMessage = "user_message"
	FieldTodo        = "todo"
	FieldTodos       = "todos"
	FieldCount       = "count"
	FieldDeletedID   = "deleted_id"
)

// Result is the envelope a tool returns. It serializes directly to the audit log.
type Result map[string]interface{}

// Success reports the success flag
func (r Result) Success() bool {
	ok, _ := r[FieldSuccess].(bool)
	return ok
}

// ErrorMessage returns the error string, empty on success
func (r Result) ErrorMessage() string {
	s, _ := r[FieldError].(string)
	return s
}

// ErrorKind returns the failure classification when one was recorded
func (r Result) ErrorKind() chaterr.Kind {
	switch k := r[FieldErrorKind].(type) {
	case chaterr.Kind:
		return k
	case string:
		return chaterr.Kind(k)
	}
	return ""
}

// UserMessage returns a friendly message attached to synthesized results
func (r Result) UserMessage() string {
	s, _ := r[FieldUserMessage].(string)
	return s
}

// Todo returns the todo payload of create/update results
func (r Result) Todo() *models.Todo {
	t, _ := r[FieldTodo].(*models.Todo)
	return t
}

// Todos returns the list payload of read results
func (r Result) Todos() []models.Todo {
	t, _ := r[FieldTodos].([]models.Todo)
	return t
}

// DeletedID returns the id archived by delete_todo
func (r Result) DeletedID() int64 {
	id, _ := r[FieldDeletedID].(int64)
	return id
}

// ok builds a success envelope with the given payload
func ok(payload Result) Result {
	r := Result{FieldSuccess: true, FieldError: nil}
	for k, v := range payload {
		r[k] = v
	}
	return r
}

// fail builds a failure envelope with nil payload fields
func fail(t *Tool, kind chaterr.Kind, msg string) Result {
	r := Result{FieldSuccess: false, FieldError: msg, FieldErrorKind: string(kind)}
	for _, field := range t.Result.OnSuccess {
		r[field] = nil
	}
	return r
}

// Failure builds a failure envelope carrying a friendly user message
func Failure(msg, userMessage string) Result {
	return Result{FieldSuccess: false, FieldError: msg, FieldUserMessage: userMessage}
}
