package security

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAuditLoggerWritesJSONL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	logger := NewAuditLogger(AuditLoggerConfig{
		Writer: &buf,
		Now:    func() time.Time { return fixed },
	})

	logger.Log(AuditEvent{Type: EventActionCreated, ActionID: "a1", Domain: "packages", Intent: "install"})
	logger.Log(AuditEvent{Type: EventApproval, ActionID: "a1", Detail: "approved"})

	scanner := bufio.NewScanner(&buf)
	var events []AuditEvent
	for scanner.Scan() {
		var ev AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("invalid JSON line: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventActionCreated || events[0].ActionID != "a1" {
		t.Errorf("first event = %+v", events[0])
	}
	if !events[0].Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", events[0].Timestamp, fixed)
	}
	if events[1].Detail != "approved" {
		t.Errorf("second event detail = %q", events[1].Detail)
	}
}

func TestAuditLoggerRedactsDetailAndMetadata(t *testing.T) {
	t.Parallel()

	redactor := NewRedactor()
	redactor.AddLiteral("hunter2")

	var buf bytes.Buffer
	logger := NewAuditLogger(AuditLoggerConfig{
		Writer:   &buf,
		Redactor: redactor,
	})

	meta := map[string]string{"token": "hunter2"}
	logger.Log(AuditEvent{
		Type:     EventExecution,
		Detail:   "ran with key sk-abcdefghijklmnopqrstuvwx and hunter2",
		Metadata: meta,
	})

	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "sk-abcdefghijklmnop") {
		t.Fatalf("secret leaked into output: %s", out)
	}
	if !strings.Contains(out, RedactPlaceholder) {
		t.Fatalf("placeholder missing from output: %s", out)
	}
	// Caller's map must not be mutated.
	if meta["token"] != "hunter2" {
		t.Errorf("caller metadata mutated: %q", meta["token"])
	}
}

func TestAuditLoggerOnEventOrdering(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var seen []EventType
	logger := NewAuditLogger(AuditLoggerConfig{
		OnEvent: func(ev AuditEvent) {
			mu.Lock()
			seen = append(seen, ev.Type)
			mu.Unlock()
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Log(AuditEvent{Type: EventScan})
		}()
	}
	wg.Wait()

	if len(seen) != 10 {
		t.Fatalf("got %d callbacks, want 10", len(seen))
	}
}

func TestTruncateDetail(t *testing.T) {
	t.Parallel()

	short := "small output"
	if got := TruncateDetail(short); got != short {
		t.Errorf("short string changed: %q", got)
	}

	long := strings.Repeat("x", maxDetailLen+100)
	got := TruncateDetail(long)
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Errorf("missing truncation marker: %q", got[len(got)-30:])
	}
	if len(got) > maxDetailLen+len("...(truncated)") {
		t.Errorf("truncated length %d exceeds cap", len(got))
	}

	// Multi-byte runes must not be split at the cut point.
	multi := strings.Repeat("é", maxDetailLen)
	got = TruncateDetail(multi)
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Fatal("multi-byte string not truncated")
	}
	body := strings.TrimSuffix(got, "...(truncated)")
	for _, r := range body {
		if r == '�' {
			t.Fatal("truncation split a rune")
		}
	}
}
