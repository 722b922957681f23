// Package security provides the cross-cutting safety layer for futurebuddy:
// the JSONL security event stream, secret redaction for logs, and rate
// limiting of governed operations.
package security

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType categorizes security events.
type EventType string

// Event types covering every governance-relevant interaction.
const (
	EventActionCreated EventType = "action_created"
	EventApproval      EventType = "approval"
	EventExecution     EventType = "execution"
	EventScan          EventType = "tool_scan"
	EventAuthSuccess   EventType = "auth_success"
	EventAuthFailure   EventType = "auth_failure"
	EventRateLimit     EventType = "rate_limit"
)

// AuditEvent is a single entry on the security event stream. This stream is
// operational telemetry; the authoritative record of what actually ran is
// the durable audit log table written by the tool registry.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	ActionID  string            `json:"action_id,omitempty"`
	ToolID    string            `json:"tool_id,omitempty"`
	Domain    string            `json:"domain,omitempty"`
	Intent    string            `json:"intent,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditLoggerConfig configures the event logger.
type AuditLoggerConfig struct {
	// Writer is the destination for JSONL output. If nil, events are only
	// dispatched to OnEvent (useful for testing).
	Writer io.Writer

	// Redactor, if non-nil, is applied to Detail and Metadata values
	// before writing.
	Redactor *Redactor

	// OnEvent, if non-nil, is called for every event (used in tests).
	OnEvent func(AuditEvent)

	// Now overrides time.Now for testing.
	Now func() time.Time
}

// AuditLogger writes security events as JSONL with optional redaction.
type AuditLogger struct {
	writer   io.Writer
	redactor *Redactor
	onEvent  func(AuditEvent)
	now      func() time.Time
	mu       sync.Mutex
}

// NewAuditLogger creates an event logger with the given configuration.
func NewAuditLogger(cfg AuditLoggerConfig) *AuditLogger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AuditLogger{
		writer:   cfg.Writer,
		redactor: cfg.Redactor,
		onEvent:  cfg.OnEvent,
		now:      now,
	}
}

// Log writes one event. The timestamp is set automatically. The caller's
// Metadata map is never mutated; a copy is made before redaction.
func (l *AuditLogger) Log(event AuditEvent) {
	event.Timestamp = l.now()

	if len(event.Metadata) > 0 {
		cp := make(map[string]string, len(event.Metadata))
		for k, v := range event.Metadata {
			cp[k] = v
		}
		event.Metadata = cp
	}

	if l.redactor != nil {
		event.Detail = l.redactor.Redact(event.Detail)
		for k, v := range event.Metadata {
			event.Metadata[k] = l.redactor.Redact(v)
		}
	}

	// Dispatch and write under one lock so the callback observes events in
	// the same order they hit the writer.
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.onEvent != nil {
		l.onEvent(event)
	}

	if l.writer != nil {
		_ = json.NewEncoder(l.writer).Encode(event)
	}
}
