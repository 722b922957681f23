package fileops

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

var watchexecVersion = regexp.MustCompile(`watchexec\s+(\S+)`)

// watchexecWrapper starts background file watchers through watchexec.
type watchexecWrapper struct {
	run shell.Runner
}

func newWatchexecWrapper(run shell.Runner) *watchexecWrapper {
	return &watchexecWrapper{run: run}
}

func (w *watchexecWrapper) ID() string   { return "watchexec" }
func (w *watchexecWrapper) Name() string { return "watchexec" }
func (w *watchexecWrapper) Description() string {
	return "File change watcher that runs commands on file modifications. Useful for auto-organizing, auto-building, or triggering actions on file events."
}

func (w *watchexecWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "watchexec --version", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	version := res.Stdout
	if m := watchexecVersion.FindStringSubmatch(res.Stdout); m != nil {
		version = m[1]
	}
	return tools.Status{Installed: true, Version: version}, nil
}

func (w *watchexecWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "watchexec-watch",
			Name:        "Watch directory",
			Description: "Watch a directory and run a command when files change",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "path", Description: "Directory to watch", Required: true},
				{Name: "command", Description: "Command to run on change", Required: true},
				{Name: "filter", Description: "File extension filter (e.g. '*.ts')"},
			},
			Timeout: 10 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				filterArg := ""
				if f := params["filter"]; f != "" {
					filterArg = fmt.Sprintf(` -e "%s"`, f)
				}
				// The watcher is long-running; detach it and report.
				cmd := fmt.Sprintf(`start "watchexec" watchexec -w "%s"%s -- %s`, params["path"], filterArg, params["command"])
				if _, err := w.run.Run(ctx, cmd, 10*time.Second); err != nil {
					return "", err
				}
				out := fmt.Sprintf("Watcher started on %s. Command %q will run on file changes.", params["path"], params["command"])
				if f := params["filter"]; f != "" {
					out += " Filter: " + f
				}
				return out, nil
			},
		},
		{
			ID:          "watchexec-watch-organize",
			Name:        "Auto-organize on change",
			Description: "Watch a directory and auto-organize new files into category folders",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "path", Description: "Directory to watch and organize", Required: true},
			},
			Timeout: 10 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				cmd := fmt.Sprintf(`start "watchexec-organize" watchexec -w "%s" --debounce 5s -- futurebuddy tools organize "%s"`, params["path"], params["path"])
				if _, err := w.run.Run(ctx, cmd, 10*time.Second); err != nil {
					return "", err
				}
				return fmt.Sprintf("Auto-organize watcher started on %s. New files will be sorted into category folders.", params["path"]), nil
			},
		},
	}
}
