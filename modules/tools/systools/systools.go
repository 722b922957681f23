// Package systools wires the system utility wrappers (System Informer,
// chezmoi) into the "system-tools" domain: process inspection, service and
// network views, and dotfile sync.
package systools

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

// Module registers the system-tools domain with the tool registry.
type Module struct {
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tools.systools",
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
	m.logger.Debug("system-tools domain registered")
	return nil
}

// NewOrchestrator builds the system-tools domain over the given runner.
func NewOrchestrator(run shell.Runner) *tools.Orchestrator {
	si := newSystemInformerWrapper(run)
	cz := newChezmoiWrapper(run)

	return &tools.Orchestrator{
		Domain:      "system-tools",
		Name:        "System Tools",
		Description: "Process management, service and network inspection, and dotfile sync",
		Wrappers:    []tools.Wrapper{si, cz},
		IntentMap: map[string][]string{
			"top-processes":          {"system-informer"},
			"find-process":           {"system-informer"},
			"kill-process":           {"system-informer"},
			"list-services":          {"system-informer"},
			"network-connections":    {"system-informer"},
			"launch-process-manager": {"system-informer"},
			"dotfile-status":         {"chezmoi"},
			"dotfile-list":           {"chezmoi"},
			"dotfile-diff":           {"chezmoi"},
			"dotfile-apply":          {"chezmoi"},
			"dotfile-add":            {"chezmoi"},
			"dotfile-update":         {"chezmoi"},
			"dotfile-init":           {"chezmoi"},
		},
		CapabilityMap: map[string]map[string]string{
			"top-processes":          {"system-informer": "si-top-processes"},
			"find-process":           {"system-informer": "si-find-process"},
			"kill-process":           {"system-informer": "si-kill-process"},
			"list-services":          {"system-informer": "si-services"},
			"network-connections":    {"system-informer": "si-network-connections"},
			"launch-process-manager": {"system-informer": "si-launch"},
			"dotfile-status":         {"chezmoi": "chezmoi-status"},
			"dotfile-list":           {"chezmoi": "chezmoi-managed"},
			"dotfile-diff":           {"chezmoi": "chezmoi-diff"},
			"dotfile-apply":          {"chezmoi": "chezmoi-apply"},
			"dotfile-add":            {"chezmoi": "chezmoi-add"},
			"dotfile-update":         {"chezmoi": "chezmoi-update"},
			"dotfile-init":           {"chezmoi": "chezmoi-init"},
		},
	}
}
