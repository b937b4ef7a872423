// ABOUTME: Typed error taxonomy for the chat pipeline
// ABOUTME: Carries an internal diagnostic and a separate user-facing message per error
package chaterr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and boundary mapping
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindTimeout       Kind = "timeout"
	KindTool          Kind = "tool"
	KindPersistence   Kind = "persistence"
	KindUnknown       Kind = "unknown"
)

// defaultUserMessages are shown when an error carries no explicit user message
var defaultUserMessages = map[Kind]string{
	KindValidation:    "I didn't understand your request. Please try again.",
	KindNotFound:      "I couldn't find that item. Please check and try again.",
	KindAuthorization: "You don't have permission to access this resource.",
	KindTimeout:       "I'm taking longer than usual. Please try again.",
	KindTool:          "I encountered an error while processing your request. Please try again.",
	KindPersistence:   "I'm having trouble accessing the database. Please try again.",
	KindUnknown:       "Something went wrong. Please try again.",
}

// Error is the concrete error type raised by the core
type Error struct {
	Kind        Kind
	Op          string // operation that failed, e.g. "todos.update"
	Msg         string // internal diagnostic, never shown to end users
	UserMessage string
	Err         error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with the default user message
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, UserMessage: defaultUserMessages[kind]}
}

// Newf is New with a format string
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return New(kind, op, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a kind. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err, UserMessage: defaultUserMessages[kind]}
}

// WithUserMessage returns a copy of e carrying a custom user-facing message
func (e *Error) WithUserMessage(msg string) *Error {
	cp := *e
	cp.UserMessage = msg
	return &cp
}

// KindOf reports the kind of the outermost *Error in err's chain
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the friendly message for err. Internal text never leaks.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.UserMessage != "" {
			return e.UserMessage
		}
		if msg, ok := defaultUserMessages[e.Kind]; ok {
			return msg
		}
	}
	return defaultUserMessages[KindUnknown]
}
