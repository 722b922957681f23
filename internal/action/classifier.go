package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onefuture/futurebuddy/internal/security"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// proposalPattern matches the structured action grammar the agent is taught
// through the capabilities summary: a fenced futurebuddy-action block
// containing one JSON object.
var proposalPattern = regexp.MustCompile("(?s)```futurebuddy-action\\s*\n(.*?)```")

// shellPatterns match raw command blocks in agent output. Each maps to a
// run intent on the terminal domain.
var shellPatterns = []struct {
	pattern *regexp.Regexp
	intent  string
	label   string
}{
	{regexp.MustCompile("(?s)```powershell\\s*\n(.*?)```"), "run-powershell", "powershell"},
	{regexp.MustCompile("(?s)```cmd\\s*\n(.*?)```"), "run-cmd", "cmd"},
	{regexp.MustCompile("(?s)```bash\\s*\n(.*?)```"), "run-shell", "shell"},
}

// greenCommandPatterns are read-only commands that are safe to auto-execute.
var greenCommandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Get-`),
	regexp.MustCompile(`(?i)^dir\b`),
	regexp.MustCompile(`(?i)^ls\b`),
	regexp.MustCompile(`(?i)^echo\b`),
	regexp.MustCompile(`(?i)^type\b`),
	regexp.MustCompile(`(?i)^cat\b`),
	regexp.MustCompile(`(?i)^hostname`),
	regexp.MustCompile(`(?i)^whoami`),
	regexp.MustCompile(`(?i)^ipconfig`),
	regexp.MustCompile(`(?i)^systeminfo`),
	regexp.MustCompile(`(?i)^tasklist`),
}

// redCommandPatterns are destructive or policy-changing commands that always
// require explicit sign-off.
var redCommandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brm\b`),
	regexp.MustCompile(`(?i)\bRemove-`),
	regexp.MustCompile(`(?i)\bdel\b`),
	regexp.MustCompile(`(?i)\bformat\b`),
	regexp.MustCompile(`(?i)\bfdisk\b`),
	regexp.MustCompile(`(?i)\bnet\s+user\b`),
	regexp.MustCompile(`(?i)\bnetsh\b.*\breset\b`),
	regexp.MustCompile(`(?i)\bregedit\b`),
	regexp.MustCompile(`(?i)\bSet-ExecutionPolicy\b`),
	regexp.MustCompile(`(?i)\bDisable-`),
	regexp.MustCompile(`(?i)\bStop-Service\b`),
	regexp.MustCompile(`(?i)\bUninstall-`),
	regexp.MustCompile(`(?i)\breg\s+(add|delete)\b`),
	regexp.MustCompile(`(?i)\bschtasks\b.*/delete\b`),
}

// CommandTier classifies a raw shell command by pattern: known read-only
// commands are green, known destructive ones are red, everything else is
// yellow.
func CommandTier(command string) tools.Tier {
	trimmed := strings.TrimSpace(command)

	for _, p := range greenCommandPatterns {
		if p.MatchString(trimmed) {
			return tools.TierGreen
		}
	}
	for _, p := range redCommandPatterns {
		if p.MatchString(trimmed) {
			return tools.TierRed
		}
	}
	return tools.TierYellow
}

// Registry is the subset of the tool registry the classifier needs. Defined
// here so the classifier can be exercised against a fake in tests.
type Registry interface {
	HasIntent(domain, intent string) bool
	IntentTier(domain, intent string) (tools.Tier, bool)
	ExecuteIntent(ctx context.Context, domain, intent string, params map[string]string, actionID string) tools.OperationResult
}

// proposal is the JSON payload of one futurebuddy-action block.
type proposal struct {
	Domain      string            `json:"domain"`
	Intent      string            `json:"intent"`
	Params      map[string]string `json:"params"`
	Tier        tools.Tier        `json:"tier"`
	Description string            `json:"description"`
}

// Classifier turns agent output into governed Actions. Malformed or unknown
// proposals are dropped silently — the agent produced them, so there is no
// one to report the error to.
type Classifier struct {
	registry Registry
	store    Store
	events   *security.AuditLogger
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewClassifier creates a classifier over the given registry and store.
func NewClassifier(registry Registry, store Store, events *security.AuditLogger, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		registry: registry,
		store:    store,
		events:   events,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Classify scans agent output for action proposals, tiers them, executes
// green ones immediately, and persists everything it creates. It returns
// the actions created during this pass so the chat pipeline can attach them
// to its response. Store failures are reported but never abort the pass —
// governance failures must not take the chat response down with them.
func (c *Classifier) Classify(ctx context.Context, agentText, conversationID string) ([]Action, error) {
	var (
		actions []Action
		errs    []error
	)

	record := func(act Action) {
		if err := c.store.Create(ctx, act); err != nil {
			errs = append(errs, fmt.Errorf("persisting action %s: %w", act.ID, err))
			return
		}
		if c.events != nil {
			c.events.Log(security.AuditEvent{
				Type:     security.EventActionCreated,
				ActionID: act.ID,
				Domain:   act.Domain,
				Intent:   act.Intent,
				Detail:   act.Description,
				Metadata: map[string]string{
					"tier":   string(act.Tier),
					"status": string(act.Status),
				},
			})
		}
		actions = append(actions, act)
	}

	for _, match := range proposalPattern.FindAllStringSubmatch(agentText, -1) {
		raw := strings.TrimSpace(match[1])
		if raw == "" {
			continue
		}

		p, ok := c.parseProposal(raw)
		if !ok {
			continue
		}

		act, ok := c.buildAction(ctx, p, conversationID)
		if !ok {
			continue
		}
		record(act)
	}

	for _, sp := range shellPatterns {
		for _, match := range sp.pattern.FindAllStringSubmatch(agentText, -1) {
			command := strings.TrimSpace(match[1])
			if command == "" {
				continue
			}

			p := proposal{
				Domain:      "terminal",
				Intent:      sp.intent,
				Params:      map[string]string{"command": command},
				Tier:        CommandTier(command),
				Description: fmt.Sprintf("Execute %s command", sp.label),
			}
			act, ok := c.buildAction(ctx, p, conversationID)
			if !ok {
				continue
			}
			record(act)
		}
	}

	return actions, errors.Join(errs...)
}

// parseProposal decodes and sanity-checks one proposal block. Anything that
// does not parse into a domain and intent is dropped.
func (c *Classifier) parseProposal(raw string) (proposal, bool) {
	var p proposal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.logger.Debug("dropping unparsable action proposal", "error", err)
		return proposal{}, false
	}
	if p.Domain == "" || p.Intent == "" {
		c.logger.Debug("dropping incomplete action proposal",
			"domain", p.Domain, "intent", p.Intent)
		return proposal{}, false
	}
	if p.Params == nil {
		p.Params = map[string]string{}
	}
	if p.Description == "" {
		p.Description = fmt.Sprintf("Tool operation: %s/%s", p.Domain, p.Intent)
	}
	return p, true
}

// buildAction validates a proposal against the registry, applies the tiering
// policy, and executes green proposals inline. The returned action is
// terminal for green tier, pending otherwise.
func (c *Classifier) buildAction(ctx context.Context, p proposal, conversationID string) (Action, bool) {
	if !c.registry.HasIntent(p.Domain, p.Intent) {
		c.logger.Debug("dropping proposal for unknown intent",
			"domain", p.Domain, "intent", p.Intent)
		return Action{}, false
	}

	capTier, ok := c.registry.IntentTier(p.Domain, p.Intent)
	if !ok {
		// Intent mapped but no capability behind it; nothing could ever
		// execute this, so there is nothing to govern.
		c.logger.Debug("dropping proposal with no backing capability",
			"domain", p.Domain, "intent", p.Intent)
		return Action{}, false
	}

	// The agent cannot downgrade its own risk: an invalid declared tier
	// counts as yellow, and the capability's declared tier is the floor.
	declared := p.Tier
	if !declared.Valid() {
		declared = tools.TierYellow
	}
	tier := tools.Stricter(declared, capTier)
	if cmd, ok := p.Params["command"]; ok && cmd != "" {
		tier = tools.Stricter(tier, CommandTier(cmd))
	}

	now := c.now()
	act := Action{
		ID:             c.newID(),
		ConversationID: conversationID,
		Tier:           tier,
		Description:    p.Description,
		Command:        renderCommand(p.Domain, p.Intent, p.Params),
		Domain:         p.Domain,
		Intent:         p.Intent,
		Params:         p.Params,
		Status:         StatusPending,
		CreatedAt:      now,
	}

	if tier == tools.TierGreen {
		// Green never waits: execute now and persist the terminal state
		// directly, with no visible pending phase.
		result := c.registry.ExecuteIntent(ctx, p.Domain, p.Intent, p.Params, act.ID)
		act.ResolvedAt = c.now()
		if result.Success {
			act.Status = StatusExecuted
			act.Result = result.Output
		} else {
			act.Status = StatusFailed
			act.Error = result.Error
		}
	}

	return act, true
}
