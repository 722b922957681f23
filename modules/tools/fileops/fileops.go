// Package fileops wires the file organization tools (the built-in organizer,
// aifiles, watchexec, TagSpaces) into one tool domain. The built-in organizer
// is always installed, so the domain never goes dark.
package fileops

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

// Module registers the file-ops domain with the tool registry.
type Module struct {
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tools.fileops",
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
	m.logger.Debug("file-ops domain registered")
	return nil
}

// NewOrchestrator builds the file-ops domain over the given runner.
func NewOrchestrator(run shell.Runner) *tools.Orchestrator {
	organize := newOrganizeWrapper()
	aifiles := newAIFilesWrapper(run)
	watchexec := newWatchexecWrapper(run)
	tagspaces := newTagSpacesWrapper(run)

	return &tools.Orchestrator{
		Domain:      "file-ops",
		Name:        "File Operations",
		Description: "Organize, tag, watch, and sort files using built-in and external tools",
		Wrappers:    []tools.Wrapper{organize, aifiles, watchexec, tagspaces},
		IntentMap: map[string][]string{
			"organize":            {"organize-tool", "aifiles"},
			"organize-preview":    {"organize-tool", "aifiles"},
			"ai-organize":         {"aifiles", "organize-tool"},
			"ai-organize-preview": {"aifiles", "organize-tool"},
			"watch":               {"watchexec"},
			"auto-organize":       {"watchexec"},
			"tag-files":           {"tagspaces"},
			"launch-tagger":       {"tagspaces"},
		},
		CapabilityMap: map[string]map[string]string{
			"organize":            {"organize-tool": "organize-execute", "aifiles": "aifiles-organize"},
			"organize-preview":    {"organize-tool": "organize-preview", "aifiles": "aifiles-preview"},
			"ai-organize":         {"aifiles": "aifiles-organize", "organize-tool": "organize-execute"},
			"ai-organize-preview": {"aifiles": "aifiles-preview", "organize-tool": "organize-preview"},
			"watch":               {"watchexec": "watchexec-watch"},
			"auto-organize":       {"watchexec": "watchexec-watch-organize"},
			"tag-files":           {"tagspaces": "tagspaces-tag-files"},
			"launch-tagger":       {"tagspaces": "tagspaces-launch"},
		},
	}
}
