// ABOUTME: Tool invocation auditor enforcing a bounded wait and result contracts
// ABOUTME: Writes append-only audit rows keyed to the assistant message that reported the call
package audit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

// DefaultTimeout bounds how long a tool call may run
const DefaultTimeout = 5 * time.Second

const timeoutUserMessage = "I'm taking longer than usual. Please try again."

// Outcome is how a tool call ended
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeTimeout Outcome = "timeout"
)

// Call is the record of one tool invocation, ready to be audited
type Call struct {
	Tool     string
	Params   map[string]interface{}
	Result   tools.Result
	Outcome  Outcome
	Started  time.Time
	Duration time.Duration
}

// Status maps the call to the persisted invocation status
func (c Call) Status() models.InvocationStatus {
	return models.StatusFromSuccess(c.Outcome == OutcomeSuccess)
}

// MessageLookup finds the message an invocation is attached to
type MessageLookup interface {
	Get(ctx context.Context, id string) (*models.Message, error)
}

// InvocationWriter appends audit rows
type InvocationWriter interface {
	Append(ctx context.Context, inv *models.ToolInvocation) error
}

// Auditor wraps registry execution with a timeout, contract validation, and audit logging
type Auditor struct {
	registry *tools.Registry
	timeout  time.Duration
	log      logrus.FieldLogger
	seq      atomic.Uint64
}

// Option configures an Auditor
type Option func(*Auditor)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(a *Auditor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the auditor's logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Auditor) {
		a.log = log
	}
}

// New creates an Auditor over registry
func New(registry *tools.Registry, opts ...Option) *Auditor {
	a := &Auditor{
		registry: registry,
		timeout:  DefaultTimeout,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithField("component", "audit")
	return a
}

// Timeout returns the configured bound
func (a *Auditor) Timeout() time.Duration {
	return a.timeout
}

// Registry returns the registry the auditor executes against
func (a *Auditor) Registry() *tools.Registry {
	return a.registry
}

type execResult struct {
	result tools.Result
	err    error
}

// Invoke runs a tool under the configured deadline. A timeout is not an error:
// it yields a synthesized failure result with OutcomeTimeout. When env carries
// savepoints, writes from a timed-out or failed call are discarded.
func (a *Auditor) Invoke(ctx context.Context, env tools.Env, name string, params map[string]interface{}) (Call, error) {
	call := Call{Tool: name, Params: params, Started: time.Now().UTC()}
	log := a.log.WithFields(logrus.Fields{"tool_name": name, "user_id": env.UserID})
	log.WithField("parameters", params).Info("invoking tool")

	sp := fmt.Sprintf("tool_call_%d", a.seq.Add(1))
	if env.Savepoints != nil {
		if err := env.Savepoints.Savepoint(ctx, sp); err != nil {
			return call, chaterr.Wrap(chaterr.KindPersistence, "audit.savepoint", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan execResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- execResult{err: chaterr.Newf(chaterr.KindTool, "tools."+name, "tool panicked: %v", p)}
			}
		}()
		res, err := a.registry.Execute(callCtx, env, name, params)
		done <- execResult{result: res, err: err}
	}()

	var out execResult
	select {
	case out = <-done:
	case <-callCtx.Done():
		cancel()
		if env.Savepoints != nil {
			// The call shares the turn's transaction; it must stop before the rollback,
			// so a handler that ignores ctx holds the turn until it returns
			waitStart := time.Now()
			<-done
			if late := time.Since(waitStart); late > a.timeout {
				log.WithField("overrun", late).Warn("tool ignored cancellation")
			}
			a.discard(ctx, env, sp, log)
		}
		call.Duration = time.Since(call.Started)

		if ctx.Err() != nil {
			call.Result = tools.Failure("Request cancelled", timeoutUserMessage)
			call.Outcome = OutcomeFailure
			return call, chaterr.Wrap(chaterr.KindTimeout, "audit.invoke", ctx.Err())
		}

		call.Result = tools.Failure(
			fmt.Sprintf("Operation took too long (>%s)", a.timeout),
			timeoutUserMessage,
		)
		call.Outcome = OutcomeTimeout
		log.WithField("timeout", a.timeout).Warn("tool invocation timed out")
		return call, nil
	}
	call.Duration = time.Since(call.Started)

	if out.err == nil {
		if tool, ok := a.registry.Lookup(name); ok {
			out.err = tool.CheckResult(out.result)
		}
	}
	if out.err != nil {
		if env.Savepoints != nil {
			a.discard(ctx, env, sp, log)
		}
		call.Result = tools.Failure("Tool execution failed", chaterr.UserMessage(out.err))
		call.Outcome = OutcomeFailure
		log.WithError(out.err).Error("tool invocation failed")
		if chaterr.KindOf(out.err) == chaterr.KindUnknown {
			out.err = chaterr.Wrap(chaterr.KindTool, "tools."+name, out.err)
		}
		return call, out.err
	}

	if env.Savepoints != nil {
		if err := env.Savepoints.Release(ctx, sp); err != nil {
			return call, chaterr.Wrap(chaterr.KindPersistence, "audit.release", err)
		}
	}

	call.Result = out.result
	call.Outcome = OutcomeFailure
	if out.result.Success() {
		call.Outcome = OutcomeSuccess
	}
	log.WithFields(logrus.Fields{"success": out.result.Success(), "duration": call.Duration}).Info("tool executed")
	return call, nil
}

func (a *Auditor) discard(ctx context.Context, env tools.Env, sp string, log logrus.FieldLogger) {
	// ctx may already be cancelled; the rollback must still run
	if err := env.Savepoints.RollbackTo(context.WithoutCancel(ctx), sp); err != nil {
		log.WithError(err).Error("failed to roll back tool call")
	}
}

// Record writes the audit row for call against messageID. Failures are logged
// and swallowed so auditing never breaks the user-facing response.
func (a *Auditor) Record(ctx context.Context, messages MessageLookup, store InvocationWriter, messageID string, call Call) bool {
	log := a.log.WithFields(logrus.Fields{"tool_name": call.Tool, "message_id": messageID})

	msg, err := messages.Get(ctx, messageID)
	if err != nil {
		log.WithError(err).Error("failed to look up message for audit")
		return false
	}
	if msg == nil {
		log.Warn("message not found, skipping audit record")
		return false
	}
	if msg.Role != models.RoleAssistant {
		log.WithField("role", msg.Role).Warn("recording tool invocation against non-assistant message")
	}

	params := call.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	inv, err := models.NewToolInvocation(messageID, call.Tool, params, call.Result, call.Status(), call.Started)
	if err != nil {
		log.WithError(err).Error("failed to serialize tool invocation")
		return false
	}
	if err := store.Append(ctx, inv); err != nil {
		log.WithError(err).Error("failed to write tool invocation")
		return false
	}
	return true
}
