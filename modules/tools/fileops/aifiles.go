package fileops

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

var pipVersionPattern = regexp.MustCompile(`Version:\s*(\S+)`)

// aifilesWrapper drives the aifiles organizer, which classifies files with a
// local LLM instead of by extension.
type aifilesWrapper struct {
	run shell.Runner
}

func newAIFilesWrapper(run shell.Runner) *aifilesWrapper {
	return &aifilesWrapper{run: run}
}

func (w *aifilesWrapper) ID() string   { return "aifiles" }
func (w *aifilesWrapper) Name() string { return "AI Files" }
func (w *aifilesWrapper) Description() string {
	return "AI-powered file organizer using local LLMs (Ollama). Understands file content and names to create smart folder structures."
}

func (w *aifilesWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "aifiles --version", 10*time.Second)
	if err == nil {
		return tools.Status{Installed: true, Version: res.Stdout}, nil
	}

	// pip knows about it even when the entry point is not on PATH.
	res, err = w.run.Run(ctx, "pip show aifiles", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	if m := pipVersionPattern.FindStringSubmatch(res.Stdout); m != nil {
		return tools.Status{Installed: true, Version: m[1]}, nil
	}
	return tools.Status{}, nil
}

func (w *aifilesWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "aifiles-organize",
			Name:        "AI organize files",
			Description: "Use AI to analyze file names and organize them into smart folder structures",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "path", Description: "Directory to organize", Required: true},
				{Name: "destination", Description: "Destination directory (defaults to same as source)"},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				cmd := fmt.Sprintf(`aifiles organize "%s"`, params["path"])
				if dest := params["destination"]; dest != "" {
					cmd += fmt.Sprintf(` --dest "%s"`, dest)
				}
				res, err := w.run.Run(ctx, cmd, 5*time.Minute)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "aifiles-preview",
			Name:        "AI organize preview",
			Description: "Preview what the AI would do without moving files",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "path", Description: "Directory to preview", Required: true},
			},
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				res, err := w.run.Run(ctx, fmt.Sprintf(`aifiles organize "%s" --dry-run`, params["path"]), 2*time.Minute)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
	}
}
