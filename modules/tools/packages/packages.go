// Package packages wires the package manager wrappers (winget, Scoop,
// Chocolatey) into one tool domain. Generic intents like "install" resolve to
// whichever manager is present, in preference order.
package packages

import (
	"errors"
	"log/slog"

	"github.com/onefuture/futurebuddy/internal/core"
	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

func init() {
	core.RegisterModule(&Module{})
}

// DomainRegistrar is the subset of the tool registry modules register into.
type DomainRegistrar interface {
	RegisterDomain(o *tools.Orchestrator) error
}

// Module registers the packages domain with the tool registry.
type Module struct {
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tools.packages",
		New: func() core.Module { return &Module{} },
	}
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	run, registrar, err := resolveToolDeps(ctx)
	if err != nil {
		return err
	}

	if err := registrar.RegisterDomain(NewOrchestrator(run)); err != nil {
		return err
	}
	m.logger.Debug("packages domain registered")
	return nil
}

// resolveToolDeps fetches the shared shell runner and tool registry from the
// service registry. Both are registered by the app before modules load.
func resolveToolDeps(ctx *core.AppContext) (shell.Runner, DomainRegistrar, error) {
	svc, ok := ctx.Service("shell.runner")
	if !ok {
		return nil, nil, errors.New("tools: shell.runner service not registered")
	}
	run, ok := svc.(shell.Runner)
	if !ok {
		return nil, nil, errors.New("tools: shell.runner service has wrong type")
	}

	svc, ok = ctx.Service("tools.registry")
	if !ok {
		return nil, nil, errors.New("tools: tools.registry service not registered")
	}
	registrar, ok := svc.(DomainRegistrar)
	if !ok {
		return nil, nil, errors.New("tools: tools.registry service has wrong type")
	}
	return run, registrar, nil
}

// NewOrchestrator builds the packages domain over the given runner.
func NewOrchestrator(run shell.Runner) *tools.Orchestrator {
	winget := newWingetWrapper(run)
	scoop := newScoopWrapper(run)
	choco := newChocoWrapper(run)

	// Preference order: winget ships with Windows, so it goes first.
	allManagers := []string{"winget", "scoop", "chocolatey"}

	return &tools.Orchestrator{
		Domain:      "packages",
		Name:        "Package Management",
		Description: "Install, update, search, and remove software packages",
		Wrappers:    []tools.Wrapper{winget, scoop, choco},
		IntentMap: map[string][]string{
			"search":         allManagers,
			"list-installed": allManagers,
			"install":        allManagers,
			"upgrade":        allManagers,
			"upgrade-all":    allManagers,
			"uninstall":      allManagers,
			"add-bucket":     {"scoop"},
		},
		CapabilityMap: map[string]map[string]string{
			"search":         {"winget": "winget-search", "scoop": "scoop-search", "chocolatey": "choco-search"},
			"list-installed": {"winget": "winget-list", "scoop": "scoop-list", "chocolatey": "choco-list"},
			"install":        {"winget": "winget-install", "scoop": "scoop-install", "chocolatey": "choco-install"},
			"upgrade":        {"winget": "winget-upgrade", "scoop": "scoop-update", "chocolatey": "choco-upgrade"},
			"upgrade-all":    {"winget": "winget-upgrade", "scoop": "scoop-update", "chocolatey": "choco-upgrade"},
			"uninstall":      {"winget": "winget-uninstall", "scoop": "scoop-uninstall", "chocolatey": "choco-uninstall"},
			"add-bucket":     {"scoop": "scoop-bucket-add"},
		},
		Normalize: normalizeParams,
	}
}

// normalizeParams maps the generic "package" param to the name each manager
// expects (winget keys on "id", the others on "name") and pins the catch-all
// value for upgrade-all.
func normalizeParams(intent string, params map[string]string, wrapperID string) map[string]string {
	normalized := make(map[string]string, len(params)+2)
	for k, v := range params {
		normalized[k] = v
	}

	if pkg, ok := params["package"]; ok && pkg != "" {
		if wrapperID == "winget" {
			normalized["id"] = pkg
		} else {
			normalized["name"] = pkg
		}
		normalized["query"] = pkg
	}

	if intent == "upgrade-all" {
		switch wrapperID {
		case "winget":
			normalized["id"] = "all"
		case "scoop":
			normalized["name"] = "*"
		case "chocolatey":
			normalized["name"] = "all"
		}
	}

	return normalized
}
