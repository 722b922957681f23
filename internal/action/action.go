// Package action implements the governed action model: extraction of
// machine-actionable intents from agent output, risk tiering, the pending /
// approved / denied / executed / failed state machine, and the approval
// resolver that triggers real execution.
package action

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/tools"
)

// Status is the lifecycle state of an Action.
type Status string

// Status values. Transitions are monotonic: pending -> approved ->
// executed|failed, or pending -> denied. Green-tier actions are born
// terminal and never visit pending.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusExecuted Status = "executed"
	StatusFailed   Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusExecuted, StatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is final. No transition may leave a terminal
// state.
func (s Status) Terminal() bool {
	switch s {
	case StatusDenied, StatusExecuted, StatusFailed:
		return true
	default:
		return false
	}
}

// Action is one proposed or executed operation. Actions are never deleted;
// they are retained as governance history alongside the audit log.
type Action struct {
	ID string `json:"id"`

	// ConversationID is a weak back-reference for audit correlation;
	// deleting a conversation never touches its actions.
	ConversationID string `json:"conversation_id,omitempty"`

	// Tier is immutable after creation.
	Tier tools.Tier `json:"tier"`

	Description string `json:"description"`

	// Command is the literal operation rendered for display: the raw shell
	// command for terminal actions, or domain/intent plus params otherwise.
	Command string `json:"command"`

	Domain string            `json:"domain"`
	Intent string            `json:"intent"`
	Params map[string]string `json:"params,omitempty"`

	Status Status `json:"status"`

	// Result and Error are mutually exclusive and only set once the action
	// reaches executed or failed.
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// ResolvedAt is set the moment status leaves pending. Zero for
	// still-pending actions.
	ResolvedAt time.Time `json:"resolved_at,omitzero"`
}

// renderCommand builds the display representation of a structured proposal.
// Terminal actions show the raw command; everything else shows the intent
// with its params in stable order.
func renderCommand(domain, intent string, params map[string]string) string {
	if cmd, ok := params["command"]; ok && cmd != "" {
		return cmd
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s", domain, intent)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, params[k])
	}
	return b.String()
}
