package tools

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// DefaultExecTimeout bounds capability executions that do not declare their own.
const DefaultExecTimeout = 30 * time.Second

// Orchestrator groups the wrappers of one functional domain and resolves a
// stable intent identifier to whichever concrete wrapper is installed.
//
// The order of wrapper IDs in IntentMap is the preference order: when several
// installed wrappers can serve the same intent, the first installed entry
// wins. This is the deterministic tie-break for the whole engine.
type Orchestrator struct {
	Domain      string
	Name        string
	Description string

	// Wrappers lists every wrapper in this domain.
	Wrappers []Wrapper

	// IntentMap maps an intent to wrapper IDs able to serve it, most
	// preferred first.
	IntentMap map[string][]string

	// CapabilityMap maps intent -> wrapper ID -> capability ID, since
	// different utilities name the same logical operation differently
	// (winget-install vs scoop-install).
	CapabilityMap map[string]map[string]string

	// Normalize, if non-nil, rewrites generic params into the form the
	// selected wrapper expects (e.g. "package" -> winget "id", scoop "name").
	Normalize func(intent string, params map[string]string, wrapperID string) map[string]string
}

// validate checks the orchestrator's static wiring at registration time.
func (o *Orchestrator) validate() error {
	if o.Domain == "" {
		return ErrEmptyDomain
	}
	if len(o.Wrappers) == 0 {
		return fmt.Errorf("%w: domain %s", ErrNoWrappers, o.Domain)
	}
	for intent, ids := range o.IntentMap {
		for _, id := range ids {
			if _, ok := o.wrapper(id); !ok {
				return fmt.Errorf("domain %s: intent %q references unknown wrapper %q", o.Domain, intent, id)
			}
		}
	}
	return nil
}

func (o *Orchestrator) wrapper(id string) (Wrapper, bool) {
	for _, w := range o.Wrappers {
		if w.ID() == id {
			return w, true
		}
	}
	return nil, false
}

// capability resolves the concrete capability serving intent on wrapperID.
func (o *Orchestrator) capability(intent, wrapperID string) (Capability, bool) {
	byWrapper, ok := o.CapabilityMap[intent]
	if !ok {
		return Capability{}, false
	}
	capID, ok := byWrapper[wrapperID]
	if !ok {
		return Capability{}, false
	}
	w, ok := o.wrapper(wrapperID)
	if !ok {
		return Capability{}, false
	}
	for _, c := range w.Capabilities() {
		if c.ID == capID {
			return c, true
		}
	}
	return Capability{}, false
}

// HasIntent reports whether the domain recognizes the intent at all,
// regardless of what is installed.
func (o *Orchestrator) HasIntent(intent string) bool {
	_, ok := o.IntentMap[intent]
	return ok
}

// IntentTier returns the declared tier for an intent. When multiple wrappers
// serve the same intent with different tiers, the strictest one wins — the
// governance floor must hold no matter which wrapper ends up dispatching.
func (o *Orchestrator) IntentTier(intent string) (Tier, bool) {
	ids, ok := o.IntentMap[intent]
	if !ok {
		return "", false
	}
	tier := TierGreen
	found := false
	for _, id := range ids {
		c, ok := o.capability(intent, id)
		if !ok {
			continue
		}
		tier = Stricter(tier, c.Tier)
		found = true
	}
	return tier, found
}

// Intents returns all intents the domain recognizes, sorted.
func (o *Orchestrator) Intents() []string {
	intents := make([]string, 0, len(o.IntentMap))
	for intent := range o.IntentMap {
		intents = append(intents, intent)
	}
	slices.Sort(intents)
	return intents
}

// Dispatch picks the first installed wrapper able to serve the intent and
// runs its capability. All failure modes — unknown intent, nothing
// installed, executor error, timeout — collapse to an unsuccessful
// OperationResult; Dispatch never panics past this point.
func (o *Orchestrator) Dispatch(ctx context.Context, intent string, params map[string]string, installed map[string]bool) OperationResult {
	start := time.Now()

	ids, ok := o.IntentMap[intent]
	if !ok {
		return OperationResult{
			ToolID:   "unknown",
			Error:    fmt.Sprintf("%s: domain %s: %s", ErrUnknownIntent, o.Domain, intent),
			Duration: time.Since(start),
		}
	}

	for _, id := range ids {
		if !installed[id] {
			continue
		}
		c, ok := o.capability(intent, id)
		if !ok {
			continue
		}
		return o.runCapability(ctx, c, id, intent, params, start)
	}

	return OperationResult{
		ToolID:   "none",
		Error:    fmt.Sprintf("%s: %s/%s", ErrNoInstalledWrapper, o.Domain, intent),
		Duration: time.Since(start),
	}
}

func (o *Orchestrator) runCapability(ctx context.Context, c Capability, wrapperID, intent string, params map[string]string, start time.Time) (result OperationResult) {
	// A capability executor must not take the registry down with it.
	defer func() {
		if r := recover(); r != nil {
			result = OperationResult{
				ToolID:   wrapperID,
				Error:    fmt.Sprintf("capability %s panicked: %v", c.ID, r),
				Duration: time.Since(start),
			}
		}
	}()

	if o.Normalize != nil {
		params = o.Normalize(intent, params, wrapperID)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := c.Run(execCtx, params)
	if err != nil {
		return OperationResult{
			ToolID:   wrapperID,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
	}

	return OperationResult{
		Success:  true,
		ToolID:   wrapperID,
		Output:   output,
		Duration: time.Since(start),
	}
}
