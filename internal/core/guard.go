// ABOUTME: ScopeGuard keeps the assistant inside the todo domain
// ABOUTME: ConfirmationGate intercepts destructive bulk requests before dispatch
package core

import (
	"strings"
	"unicode/utf8"
)

// Verdict is the scope decision for a message
type Verdict string

const (
	// VerdictBlocked messages hit the block-list and are declined
	VerdictBlocked Verdict = "blocked"
	// VerdictAllowed messages hit the allow-list
	VerdictAllowed Verdict = "allowed"
	// VerdictResidual messages hit neither list; classification still runs
	VerdictResidual Verdict = "residual"
)

// Residual reasons
const (
	ReasonLikelyInScope = "likely in scope"
	ReasonQuestioning   = "questioning"
)

var blockList = []string{
	"email", "send email", "send message", "web search", "google", "code",
	"python", "javascript", "java", "execute", "run", "file", "access",
	"terminal", "command", "shell", "learn", "teach", "explain",
	"how do i", "how to", "tutorial", "guide", "crypto", "bitcoin",
	"financial advice", "medical", "health", "legal",
}

var allowList = []string{
	"todo", "task", "done", "create", "delete", "update", "show", "list",
	"mark", "complete", "finished", "pending", "new", "add", "remove",
	"priority", "description", "status",
}

var bulkDestructive = []string{
	"delete all", "clear all", "remove all", "delete everything",
	"clear everything", "remove everything", "reset all", "erase all",
}

// ScopeDecision explains a ScopeGuard verdict
type ScopeDecision struct {
	Verdict Verdict
	Keyword string // list entry that matched, if any
	Reason  string // residual heuristic that applied
}

// InScope reports whether dispatch may proceed
func (d ScopeDecision) InScope() bool {
	return d.Verdict != VerdictBlocked
}

// ScopeGuard checks the block-list before the allow-list
type ScopeGuard struct {
	block []string
	allow []string
}

// NewScopeGuard creates a guard with the default lists
func NewScopeGuard() *ScopeGuard {
	return &ScopeGuard{block: blockList, allow: allowList}
}

// Check classifies message scope. Residual messages are never blocked: short
// or non-questioning ones are treated as likely in scope, the rest as questioning.
func (g *ScopeGuard) Check(message string) ScopeDecision {
	lower := strings.ToLower(message)
	if kw := firstMatch(lower, g.block); kw != "" {
		return ScopeDecision{Verdict: VerdictBlocked, Keyword: kw}
	}
	if kw := firstMatch(lower, g.allow); kw != "" {
		return ScopeDecision{Verdict: VerdictAllowed, Keyword: kw}
	}

	trimmed := strings.TrimSpace(message)
	reason := ReasonQuestioning
	if utf8.RuneCountInString(trimmed) < 5 || !strings.Contains(trimmed, "?") {
		reason = ReasonLikelyInScope
	}
	return ScopeDecision{Verdict: VerdictResidual, Reason: reason}
}

// ConfirmationGate holds no state between turns. A follow-up "yes" is
// classified like any other message.
type ConfirmationGate struct {
	phrases []string
}

// NewConfirmationGate creates a gate with the default bulk phrases
func NewConfirmationGate() *ConfirmationGate {
	return &ConfirmationGate{phrases: bulkDestructive}
}

// Intercepts returns the matched phrase when message requests a bulk destructive operation
func (g *ConfirmationGate) Intercepts(message string) (string, bool) {
	phrase := firstMatch(strings.ToLower(message), g.phrases)
	return phrase, phrase != ""
}
