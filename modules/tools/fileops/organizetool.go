package fileops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/tools"
)

// organizeWrapper is the built-in extension-based organizer. It needs no
// external binary, so it is the guaranteed fallback of the domain.
type organizeWrapper struct{}

func newOrganizeWrapper() *organizeWrapper { return &organizeWrapper{} }

func (w *organizeWrapper) ID() string   { return "organize-tool" }
func (w *organizeWrapper) Name() string { return "FutureBuddy File Organizer" }
func (w *organizeWrapper) Description() string {
	return "Built-in extension-based file organizer. Sorts files into category folders (Documents, Images, Videos, etc.)."
}

// Detect always succeeds; the organizer ships with the binary.
func (w *organizeWrapper) Detect(context.Context) (tools.Status, error) {
	return tools.Status{Installed: true}, nil
}

func (w *organizeWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "organize-preview",
			Name:        "Preview file organization",
			Description: "Dry-run: show what files would be moved without actually moving them",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "path", Description: "Directory path to organize", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(_ context.Context, params map[string]string) (string, error) {
				return w.organize(params["path"], true)
			},
		},
		{
			ID:          "organize-execute",
			Name:        "Organize files",
			Description: "Move files into category folders based on extension (Documents, Images, Videos, etc.)",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "path", Description: "Directory path to organize", Required: true},
			},
			Timeout: 2 * time.Minute,
			Run: func(_ context.Context, params map[string]string) (string, error) {
				return w.organize(params["path"], false)
			},
		},
	}
}

func (w *organizeWrapper) organize(path string, dryRun bool) (string, error) {
	if path == "" {
		return "", errors.New("path is required")
	}
	result, err := OrganizeDirectory(path, dryRun)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if dryRun {
		fmt.Fprintf(&b, "Preview for: %s\n", path)
		fmt.Fprintf(&b, "Would move: %d files\n", result.Moved)
		fmt.Fprintf(&b, "Would skip: %d files (unknown extension)\n", result.Skipped)
	} else {
		fmt.Fprintf(&b, "Organized: %s\n", path)
		fmt.Fprintf(&b, "Moved: %d files\n", result.Moved)
		fmt.Fprintf(&b, "Skipped: %d files\n", result.Skipped)
	}
	for _, move := range result.Details {
		fmt.Fprintf(&b, "  %s -> %s\n", move.From, move.To)
	}
	return b.String(), nil
}
