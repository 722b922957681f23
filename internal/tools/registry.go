package tools

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onefuture/futurebuddy/internal/security"
)

const (
	// DefaultProbeTimeout bounds one detection probe during a scan.
	DefaultProbeTimeout = 10 * time.Second

	// defaultProbeLimit caps how many detection probes run concurrently.
	defaultProbeLimit = 4
)

// toolSnapshot is the copy-on-write state shared between scans and readers.
// Readers always see a complete, possibly slightly stale, view and never
// block on a scan in progress.
type toolSnapshot struct {
	byID map[string]Info
}

// Registry is the process-wide tool catalogue. It registers domain
// orchestrators, scans installed capabilities, advertises what can run, and
// routes intent executions while appending one audit row per attempt.
// It is instance-based (not global) for better testability.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]*Orchestrator
	order   []string // registration order, used for stable summary output

	snapshot atomic.Pointer[toolSnapshot]

	audit   AuditLog
	cache   StatusCache
	limiter *security.RateLimiter
	events  *security.AuditLogger
	logger  *slog.Logger

	probeTimeout time.Duration
	probeLimit   int

	now func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		domains:      make(map[string]*Orchestrator),
		logger:       logger,
		probeTimeout: DefaultProbeTimeout,
		probeLimit:   defaultProbeLimit,
		now:          time.Now,
	}
	r.snapshot.Store(&toolSnapshot{byID: map[string]Info{}})
	return r
}

// SetAuditLog configures the durable audit log for intent executions.
func (r *Registry) SetAuditLog(log AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = log
}

// SetStatusCache configures the durable mirror for scan results.
func (r *Registry) SetStatusCache(cache StatusCache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = cache
}

// SetRateLimiter configures rate limiting for intent executions.
func (r *Registry) SetRateLimiter(limiter *security.RateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiter = limiter
}

// SetEventLogger configures the JSONL security event stream.
func (r *Registry) SetEventLogger(events *security.AuditLogger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = events
}

// RegisterDomain adds a domain orchestrator to the catalogue. Registering a
// domain that already exists replaces it in place (idempotent per domain ID).
func (r *Registry) RegisterDomain(o *Orchestrator) error {
	if err := o.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.domains[o.Domain]; !exists {
		r.order = append(r.order, o.Domain)
	}
	r.domains[o.Domain] = o
	return nil
}

// Domains returns the registered domain IDs in registration order.
func (r *Registry) Domains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// HasIntent reports whether domain is registered and recognizes intent.
func (r *Registry) HasIntent(domain, intent string) bool {
	r.mu.RLock()
	o, ok := r.domains[domain]
	r.mu.RUnlock()
	return ok && o.HasIntent(intent)
}

// IntentTier returns the tier the registered capability declares for an
// intent. The classifier uses this as the governance floor for proposals.
func (r *Registry) IntentTier(domain, intent string) (Tier, bool) {
	r.mu.RLock()
	o, ok := r.domains[domain]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	return o.IntentTier(intent)
}

// Scan probes every registered wrapper for presence, swaps in a fresh status
// snapshot, mirrors it to the durable cache, and returns the full result set
// sorted by domain then wrapper ID.
//
// Probes run concurrently with a bounded fan-out, each under its own timeout.
// A probe that fails or hangs marks its wrapper as not installed; it never
// aborts the rest of the scan.
func (r *Registry) Scan(ctx context.Context) ([]Info, error) {
	type probeTarget struct {
		domain  string
		wrapper Wrapper
	}

	r.mu.RLock()
	var targets []probeTarget
	for _, domain := range r.order {
		for _, w := range r.domains[domain].Wrappers {
			targets = append(targets, probeTarget{domain: domain, wrapper: w})
		}
	}
	cache := r.cache
	events := r.events
	probeTimeout := r.probeTimeout
	probeLimit := r.probeLimit
	r.mu.RUnlock()

	var (
		resMu sync.Mutex
		byID  = make(map[string]Info, len(targets))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeLimit)

	for _, t := range targets {
		t := t
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gctx, probeTimeout)
			defer cancel()

			status, err := t.wrapper.Detect(probeCtx)
			if err != nil {
				// Detection failure is contained: the wrapper is treated
				// as absent and the scan moves on.
				r.logger.Warn("tool detection failed",
					"domain", t.domain,
					"tool", t.wrapper.ID(),
					"error", err,
				)
				status = Status{}
			}

			caps := t.wrapper.Capabilities()
			capIDs := make([]string, 0, len(caps))
			for _, c := range caps {
				capIDs = append(capIDs, c.ID)
			}

			resMu.Lock()
			byID[t.wrapper.ID()] = Info{
				ID:           t.wrapper.ID(),
				Name:         t.wrapper.Name(),
				Description:  t.wrapper.Description(),
				Domain:       t.domain,
				Installed:    status.Installed,
				Version:      status.Version,
				Path:         status.Path,
				LastChecked:  r.now(),
				Capabilities: capIDs,
			}
			resMu.Unlock()
			return nil
		})
	}

	// Probe goroutines never return errors; Wait only propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.snapshot.Store(&toolSnapshot{byID: byID})

	infos := sortedInfos(byID)

	if cache != nil {
		if err := cache.SaveAll(ctx, infos); err != nil {
			r.logger.Warn("tool status cache write failed", "error", err)
		}
	}

	if events != nil {
		events.Log(security.AuditEvent{
			Type:   security.EventScan,
			Detail: fmt.Sprintf("scanned %d tools, %d installed", len(infos), countInstalled(infos)),
		})
	}

	return infos, nil
}

// LoadCached restores the last scan from the durable mirror. It is called at
// boot so capability queries work before the first (slow) probe pass.
func (r *Registry) LoadCached(ctx context.Context) error {
	r.mu.RLock()
	cache := r.cache
	r.mu.RUnlock()

	if cache == nil {
		return nil
	}

	infos, err := cache.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading tool status cache: %w", err)
	}
	if len(infos) == 0 {
		return nil
	}

	byID := make(map[string]Info, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	r.snapshot.Store(&toolSnapshot{byID: byID})
	return nil
}

// Infos returns the cached view of every known wrapper.
func (r *Registry) Infos() []Info {
	return sortedInfos(r.snapshot.Load().byID)
}

// Installed returns the cached view of installed wrappers only.
func (r *Registry) Installed() []Info {
	var infos []Info
	for _, info := range r.snapshot.Load().byID {
		if info.Installed {
			infos = append(infos, info)
		}
	}
	slices.SortFunc(infos, compareInfo)
	return infos
}

// installedSet returns the IDs of installed wrappers per the current snapshot.
func (r *Registry) installedSet() map[string]bool {
	byID := r.snapshot.Load().byID
	set := make(map[string]bool, len(byID))
	for id, info := range byID {
		if info.Installed {
			set[id] = true
		}
	}
	return set
}

// Operations returns every operation currently backed by an installed
// wrapper — the set of requests that can actually run right now.
func (r *Registry) Operations() []OperationInfo {
	installed := r.installedSet()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var ops []OperationInfo
	for _, domain := range r.order {
		o := r.domains[domain]
		for _, w := range o.Wrappers {
			if !installed[w.ID()] {
				continue
			}
			for _, c := range w.Capabilities() {
				ops = append(ops, OperationInfo{
					ID:          c.ID,
					ToolID:      w.ID(),
					Domain:      domain,
					Name:        c.Name,
					Description: c.Description,
					Tier:        c.Tier,
					Params:      c.Params,
				})
			}
		}
	}
	return ops
}

// CapabilitiesSummary renders the natural-language block injected into the
// agent's system prompt. Only intents backed by at least one installed
// wrapper are listed, so the agent never proposes something that cannot run.
func (r *Registry) CapabilitiesSummary() string {
	installed := r.installedSet()
	if len(installed) == 0 {
		return ""
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	b.WriteString("## Available Tools\n")
	b.WriteString("You can request a host operation by emitting a `futurebuddy-action` code block:\n")
	b.WriteString("```futurebuddy-action\n")
	b.WriteString(`{"domain":"<domain>","intent":"<intent>","params":{},"tier":"<green|yellow|red>","description":"<what this does>"}` + "\n")
	b.WriteString("```\n")

	for _, domain := range r.order {
		o := r.domains[domain]

		var lines []string
		for _, intent := range o.Intents() {
			if !intentAvailable(o, intent, installed) {
				continue
			}
			tier, _ := o.IntentTier(intent)
			lines = append(lines, fmt.Sprintf("- intent: `%s` (tier: %s)", intent, tier))
		}
		if len(lines) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n### %s (domain: %s)\n", o.Name, o.Domain)
		for _, line := range lines {
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}

// ExecuteIntent resolves the orchestrator for domain, dispatches the intent
// to the preferred installed wrapper, and appends exactly one audit entry —
// success or failure, unknown domain included. It never panics and never
// returns an error: all failures are carried in the result.
func (r *Registry) ExecuteIntent(ctx context.Context, domain, intent string, params map[string]string, actionID string) OperationResult {
	r.mu.RLock()
	o, known := r.domains[domain]
	audit := r.audit
	limiter := r.limiter
	events := r.events
	r.mu.RUnlock()

	var result OperationResult
	switch {
	case limiter != nil && limiter.Allow(security.BucketExecution) != nil:
		result = OperationResult{
			ToolID: "none",
			Error:  "execution rate limit exceeded",
		}
		if events != nil {
			events.Log(security.AuditEvent{
				Type:   security.EventRateLimit,
				Domain: domain,
				Intent: intent,
				Detail: "intent execution rate limit exceeded",
			})
		}
	case !known:
		result = OperationResult{
			ToolID: "unknown",
			Error:  fmt.Sprintf("%s: %s", ErrUnknownDomain, domain),
		}
	default:
		result = o.Dispatch(ctx, intent, params, r.installedSet())
	}

	if audit != nil {
		entry := AuditEntry{
			ActionID:   actionID,
			ToolID:     result.ToolID,
			Domain:     domain,
			Intent:     intent,
			Params:     params,
			Success:    result.Success,
			Output:     result.Output,
			Error:      result.Error,
			Duration:   result.Duration,
			ExecutedAt: r.now(),
		}
		if err := audit.Append(ctx, entry); err != nil {
			// The execution outcome still stands; losing an audit row is
			// logged loudly but does not fail the caller's operation.
			r.logger.Error("audit log append failed",
				"domain", domain,
				"intent", intent,
				"error", err,
			)
		}
	}

	if events != nil {
		detail := security.TruncateDetail(result.Output)
		if result.Error != "" {
			detail = "error: " + security.TruncateDetail(result.Error)
		}
		events.Log(security.AuditEvent{
			Type:     security.EventExecution,
			ActionID: actionID,
			ToolID:   result.ToolID,
			Domain:   domain,
			Intent:   intent,
			Detail:   detail,
			Metadata: map[string]string{
				"success":     fmt.Sprintf("%v", result.Success),
				"duration_ms": fmt.Sprintf("%d", result.Duration.Milliseconds()),
			},
		})
	}

	return result
}

func intentAvailable(o *Orchestrator, intent string, installed map[string]bool) bool {
	for _, id := range o.IntentMap[intent] {
		if installed[id] {
			return true
		}
	}
	return false
}

func sortedInfos(byID map[string]Info) []Info {
	infos := make([]Info, 0, len(byID))
	for _, info := range byID {
		infos = append(infos, info)
	}
	slices.SortFunc(infos, compareInfo)
	return infos
}

func compareInfo(a, b Info) int {
	if c := strings.Compare(a.Domain, b.Domain); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func countInstalled(infos []Info) int {
	n := 0
	for _, info := range infos {
		if info.Installed {
			n++
		}
	}
	return n
}
