// Package drivers wires the hardware driver tooling (pnputil,
// PSWindowsUpdate, nvidia-smi, SDIO, DDU, RAPR) into one tool domain.
// Inspection is green; installs are staged and store deletions are red.
package drivers

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

// Module registers the drivers domain with the tool registry.
type Module struct {
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tools.drivers",
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
	m.logger.Debug("drivers domain registered")
	return nil
}

// NewOrchestrator builds the drivers domain over the given runner.
func NewOrchestrator(run shell.Runner) *tools.Orchestrator {
	pnputil := newPnpUtilWrapper(run)
	pswu := newPSWindowsUpdateWrapper(run)
	nvidia := newNvidiaWrapper(run)
	sdio := newSDIOWrapper(run)
	ddu := newDDUWrapper(run)
	rapr := newRaprWrapper(run)

	return &tools.Orchestrator{
		Domain:      "drivers",
		Name:        "Driver Management",
		Description: "Detect, update, clean, and manage hardware drivers",
		Wrappers:    []tools.Wrapper{pnputil, pswu, nvidia, sdio, ddu, rapr},
		IntentMap: map[string][]string{
			"list-drivers":         {"pnputil", "rapr"},
			"list-devices":         {"pnputil"},
			"check-updates":        {"pswindowsupdate", "nvidia-downloader", "pnputil"},
			"install-updates":      {"pswindowsupdate", "nvidia-downloader"},
			"gpu-info":             {"nvidia-downloader"},
			"gpu-update":           {"nvidia-downloader"},
			"scan-missing":         {"sdio", "pnputil"},
			"clean-uninstall-gpu":  {"ddu"},
			"driver-store-cleanup": {"rapr", "pnputil"},
			"export-driver":        {"pnputil"},
			"delete-driver":        {"pnputil"},
			"update-history":       {"pswindowsupdate"},
		},
		CapabilityMap: map[string]map[string]string{
			"list-drivers":         {"pnputil": "pnputil-list-drivers", "rapr": "rapr-list-old"},
			"list-devices":         {"pnputil": "pnputil-list-devices"},
			"check-updates":        {"pswindowsupdate": "pswu-check-drivers", "nvidia-downloader": "nvidia-check-update", "pnputil": "pnputil-list-drivers"},
			"install-updates":      {"pswindowsupdate": "pswu-install-drivers", "nvidia-downloader": "nvidia-install-update"},
			"gpu-info":             {"nvidia-downloader": "nvidia-gpu-info"},
			"gpu-update":           {"nvidia-downloader": "nvidia-install-update"},
			"scan-missing":         {"sdio": "sdio-scan", "pnputil": "pnputil-list-devices"},
			"clean-uninstall-gpu":  {"ddu": "ddu-clean"},
			"driver-store-cleanup": {"rapr": "rapr-cleanup", "pnputil": "pnputil-list-drivers"},
			"export-driver":        {"pnputil": "pnputil-export-driver"},
			"delete-driver":        {"pnputil": "pnputil-delete-driver"},
			"update-history":       {"pswindowsupdate": "pswu-history"},
		},
	}
}
