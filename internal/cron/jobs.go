package cron

import (
	"context"
	"log/slog"

	"github.com/onefuture/futurebuddy/internal/tools"
)

// ToolScanner is the subset of the tool registry needed by cron jobs.
type ToolScanner interface {
	Scan(ctx context.Context) ([]tools.Info, error)
}

// ToolScanJob reprobes all registered tool wrappers so the installed-tool
// view tracks what the user installs or removes outside the assistant.
type ToolScanJob struct {
	Registry     ToolScanner
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/30 * * * *"
}

// Compile-time interface check.
var _ Job = (*ToolScanJob)(nil)

// Name implements Job.
func (j *ToolScanJob) Name() string { return "tool_scan" }

// Schedule implements Job.
func (j *ToolScanJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/30 * * * *"
}

// Run rescans the tool registry.
func (j *ToolScanJob) Run(ctx context.Context) error {
	infos, err := j.Registry.Scan(ctx)
	if err != nil {
		return err
	}
	if j.Logger != nil {
		installed := 0
		for _, info := range infos {
			if info.Installed {
				installed++
			}
		}
		j.Logger.Debug("cron: tool scan completed",
			"tools", len(infos), "installed", installed)
	}
	return nil
}
