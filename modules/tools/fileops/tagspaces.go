package fileops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// tagspacesWrapper drives TagSpaces for file tagging. Tagging is sidecar
// based so it never rewrites the files themselves.
type tagspacesWrapper struct {
	run shell.Runner
}

func newTagSpacesWrapper(run shell.Runner) *tagspacesWrapper {
	return &tagspacesWrapper{run: run}
}

func (w *tagspacesWrapper) ID() string   { return "tagspaces" }
func (w *tagspacesWrapper) Name() string { return "TagSpaces" }
func (w *tagspacesWrapper) Description() string {
	return "File tagging and organization app. Tag files with metadata, browse by tags, and manage file collections."
}

func (w *tagspacesWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "winget list --id TagSpaces.TagSpaces --accept-source-agreements", 15*time.Second)
	if err == nil && strings.Contains(res.Stdout, "TagSpaces") {
		return tools.Status{Installed: true}, nil
	}

	paths := []string{
		`C:\Program Files\TagSpaces\TagSpaces.exe`,
		`%LOCALAPPDATA%\Programs\TagSpaces\TagSpaces.exe`,
	}
	for _, path := range paths {
		res, err := w.run.Run(ctx, fmt.Sprintf(`cmd /c if exist "%s" echo found`, path), 5*time.Second)
		if err != nil {
			continue
		}
		if strings.Contains(res.Stdout, "found") {
			return tools.Status{Installed: true, Path: path}, nil
		}
	}
	return tools.Status{}, nil
}

func (w *tagspacesWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "tagspaces-launch",
			Name:        "Launch TagSpaces",
			Description: "Open TagSpaces for visual file tagging and browsing",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "path", Description: "Directory to open in TagSpaces"},
			},
			Timeout: 10 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				cmd := `start "" "TagSpaces.exe"`
				if p := params["path"]; p != "" {
					cmd += fmt.Sprintf(` "%s"`, p)
				}
				if _, err := w.run.Run(ctx, cmd, 5*time.Second); err != nil {
					return "", err
				}
				if p := params["path"]; p != "" {
					return "TagSpaces launched. Opened: " + p, nil
				}
				return "TagSpaces launched.", nil
			},
		},
		{
			ID:          "tagspaces-tag-files",
			Name:        "Tag files by extension",
			Description: "Add sidecar tags to files in a directory based on their extension type",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "path", Description: "Directory containing files to tag", Required: true},
				{Name: "tag", Description: "Tag to apply", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				// Sidecar JSON files keep the tagging non-destructive.
				cmd := shell.PowerShell(fmt.Sprintf(
					`Get-ChildItem -Path '%s' -File | ForEach-Object { $sidecar = Join-Path $_.DirectoryName ('.ts' + $_.Name + '.json'); if (-not (Test-Path $sidecar)) { @{tags=@('%s')} | ConvertTo-Json | Set-Content -Path $sidecar -Encoding UTF8; Write-Output ('Tagged: ' + $_.Name) } else { Write-Output ('Already tagged: ' + $_.Name) } }`,
					params["path"], params["tag"]))
				res, err := w.run.Run(ctx, cmd, 30*time.Second)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
	}
}
