// Package tools defines the capability model and registry for futurebuddy.
// Tools are the primary security boundary: every host-side action the agent
// takes goes through a registered capability with tier-based governance.
package tools

import (
	"context"
	"time"
)

// Tier is the risk classification of a capability or action.
// Green auto-executes, yellow and red are staged for human review.
type Tier string

// Tier values ordered from least to most dangerous.
const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierGreen, TierYellow, TierRed:
		return true
	default:
		return false
	}
}

// rank orders tiers by risk. Unknown tiers rank above red so that a
// malformed tier can never loosen governance.
func (t Tier) rank() int {
	switch t {
	case TierGreen:
		return 0
	case TierYellow:
		return 1
	case TierRed:
		return 2
	default:
		return 3
	}
}

// Stricter returns the higher-risk of two tiers. The agent declares a tier
// on its proposals, but it can never downgrade below what the capability
// itself declares.
func Stricter(a, b Tier) Tier {
	if a.rank() >= b.rank() {
		return a
	}
	return b
}

// Param describes one parameter of a capability.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}

// Status is the runtime detection result for a wrapper. It is recomputed
// on every scan and has no identity across scans.
type Status struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Path      string `json:"path,omitempty"`
}

// Capability is the immutable definition of one controllable operation.
// It is owned by exactly one Wrapper and is never persisted, only advertised.
type Capability struct {
	// ID is unique within the owning wrapper (e.g. "winget-install").
	ID          string
	Name        string
	Description string

	// Tier is the risk classification the capability declares for itself.
	// Proposals referencing this capability can only be stricter, never looser.
	Tier Tier

	// Params lists accepted parameters in display order.
	Params []Param

	// Timeout bounds a single execution. Zero means DefaultExecTimeout.
	Timeout time.Duration

	// Run executes the capability. It returns the captured output or an
	// error; it must not panic and must honor ctx cancellation.
	Run func(ctx context.Context, params map[string]string) (string, error)
}

// Wrapper adapts one external utility (a package manager, a process
// inspector, ...) into a set of capabilities plus a detection probe.
type Wrapper interface {
	// ID returns the unique identifier for this wrapper within its domain.
	ID() string

	// Name returns a human-readable display name.
	Name() string

	// Description returns a one-line summary of what the utility does.
	Description() string

	// Detect probes whether the underlying utility is present and usable.
	// A non-nil error means the probe itself failed (crashed, timed out);
	// "cleanly absent" is Status{Installed: false} with a nil error so
	// callers never conflate the two.
	Detect(ctx context.Context) (Status, error)

	// Capabilities returns the operations this wrapper offers.
	Capabilities() []Capability
}

// OperationResult is the outcome of one intent execution. Failures are
// carried as data — the registry never raises past its boundary.
type OperationResult struct {
	Success  bool          `json:"success"`
	ToolID   string        `json:"tool_id"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ms"`
}

// Info is the registry's cached view of one wrapper after a scan.
type Info struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Domain       string    `json:"domain"`
	Installed    bool      `json:"installed"`
	Version      string    `json:"version,omitempty"`
	Path         string    `json:"path,omitempty"`
	LastChecked  time.Time `json:"last_checked"`
	Capabilities []string  `json:"capabilities"`
}

// OperationInfo describes one currently-available operation, advertised to
// callers and to the agent prompt. Only installed wrappers contribute.
type OperationInfo struct {
	ID          string  `json:"id"`
	ToolID      string  `json:"tool_id"`
	Domain      string  `json:"domain"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tier        Tier    `json:"tier"`
	Params      []Param `json:"params"`
}

// AuditEntry is one append-only record of an execution attempt — the sole
// source of truth for what actually ran. Entries are written once by the
// registry and never updated or deleted.
type AuditEntry struct {
	// ActionID links back to the originating Action, if any.
	ActionID   string            `json:"action_id,omitempty"`
	ToolID     string            `json:"tool_id"`
	Domain     string            `json:"domain"`
	Intent     string            `json:"intent"`
	Params     map[string]string `json:"params,omitempty"`
	Success    bool              `json:"success"`
	Output     string            `json:"output,omitempty"`
	Error      string            `json:"error,omitempty"`
	Duration   time.Duration     `json:"duration_ms"`
	ExecutedAt time.Time         `json:"executed_at"`
}

// AuditLog receives one entry per executeIntent call, success or failure.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
}

// StatusCache mirrors scan results to durable storage so a restart does not
// have to re-probe every utility before serving capability queries.
type StatusCache interface {
	SaveAll(ctx context.Context, infos []Info) error
	LoadAll(ctx context.Context) ([]Info, error)
}
