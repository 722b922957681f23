// Package debloat wires the Windows cleanup tools (Win11Debloat, WinUtil,
// Bulk Crap Uninstaller) into one tool domain. Nearly everything here mutates
// system state, so most capabilities sit in the red tier.
package debloat

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

// Module registers the debloat domain with the tool registry.
type Module struct {
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tools.debloat",
		New: func() core.Module { return &Module{} },
	}
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	svc, ok := ctx.Service("shell.runner")
	if !ok {
		return errors.New("tools: shell.runner service not registered")
	}
	run, ok := svc.(shell.Runner)
	if !ok {
		return errors.New("tools: shell.runner service has wrong type")
	}

	svc, ok = ctx.Service("tools.registry")
	if !ok {
		return errors.New("tools: tools.registry service not registered")
	}
	registrar, ok := svc.(DomainRegistrar)
	if !ok {
		return errors.New("tools: tools.registry service has wrong type")
	}

	if err := registrar.RegisterDomain(NewOrchestrator(run)); err != nil {
		return err
	}
	m.logger.Debug("debloat domain registered")
	return nil
}

// NewOrchestrator builds the debloat domain over the given runner.
func NewOrchestrator(run shell.Runner) *tools.Orchestrator {
	w11 := newWin11DebloatWrapper(run)
	winutil := newWinutilWrapper(run)
	bcu := newBCUWrapper(run)

	return &tools.Orchestrator{
		Domain:      "debloat",
		Name:        "Debloat & Privacy",
		Description: "Remove bloatware, disable telemetry, and clean up Windows",
		Wrappers:    []tools.Wrapper{w11, winutil, bcu},
		IntentMap: map[string][]string{
			"full-debloat":        {"win11debloat"},
			"remove-bloatware":    {"win11debloat"},
			"disable-telemetry":   {"win11debloat", "winutil"},
			"disable-bing-search": {"win11debloat"},
			"clean-taskbar":       {"win11debloat"},
			"essential-tweaks":    {"winutil"},
			"launch-debloat-gui":  {"winutil", "bcuninstaller"},
			"list-programs":       {"bcuninstaller"},
			"uninstall-program":   {"bcuninstaller"},
			"batch-uninstall":     {"bcuninstaller"},
		},
		CapabilityMap: map[string]map[string]string{
			"full-debloat":        {"win11debloat": "win11debloat-default"},
			"remove-bloatware":    {"win11debloat": "win11debloat-apps-only"},
			"disable-telemetry":   {"win11debloat": "win11debloat-disable-telemetry", "winutil": "winutil-essential-tweaks"},
			"disable-bing-search": {"win11debloat": "win11debloat-disable-bing"},
			"clean-taskbar":       {"win11debloat": "win11debloat-clean-taskbar"},
			"essential-tweaks":    {"winutil": "winutil-essential-tweaks"},
			"launch-debloat-gui":  {"winutil": "winutil-launch", "bcuninstaller": "bcu-launch"},
			"list-programs":       {"bcuninstaller": "bcu-list"},
			"uninstall-program":   {"bcuninstaller": "bcu-uninstall"},
			"batch-uninstall":     {"bcuninstaller": "bcu-uninstall-quiet"},
		},
	}
}
