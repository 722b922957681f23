// Package terminal exposes the host shells (PowerShell, cmd, sh) as a tool
// domain. Capabilities here declare the green tier: the risk of a concrete
// command line is judged per command by the classifier, which can only
// escalate, never relax.
package terminal

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

// Module registers the terminal domain with the tool registry.
type Module struct {
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tools.terminal",
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
	m.logger.Debug("terminal domain registered")
	return nil
}

// NewOrchestrator builds the terminal domain over the given runner.
func NewOrchestrator(run shell.Runner) *tools.Orchestrator {
	return &tools.Orchestrator{
		Domain:      "terminal",
		Name:        "Terminal",
		Description: "Run shell commands on this machine",
		Wrappers: []tools.Wrapper{
			newShellWrapper(run, "powershell", "PowerShell",
				"Windows PowerShell host", "powershell -NoProfile -Command \"$PSVersionTable.PSVersion.ToString()\"",
				"run-powershell", shell.PowerShell),
			newShellWrapper(run, "cmd", "Command Prompt",
				"Windows command interpreter", "cmd /c ver",
				"run-cmd", nil),
			newShellWrapper(run, "sh", "POSIX shell",
				"Bourne-compatible shell", "echo ok",
				"run-shell", nil),
		},
		IntentMap: map[string][]string{
			"run-powershell": {"powershell"},
			"run-cmd":        {"cmd"},
			"run-shell":      {"sh"},
		},
		CapabilityMap: map[string]map[string]string{
			"run-powershell": {"powershell": "run-powershell"},
			"run-cmd":        {"cmd": "run-cmd"},
			"run-shell":      {"sh": "run-shell"},
		},
	}
}
