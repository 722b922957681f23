package drivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// sdioWrapper drives Snappy Driver Installer Origin, a portable offline
// driver installer.
type sdioWrapper struct {
	run shell.Runner
}

func newSDIOWrapper(run shell.Runner) *sdioWrapper {
	return &sdioWrapper{run: run}
}

func (w *sdioWrapper) ID() string   { return "sdio" }
func (w *sdioWrapper) Name() string { return "Snappy Driver Installer Origin" }
func (w *sdioWrapper) Description() string {
	return "Offline driver installer. Scans hardware and installs matching drivers from local or downloaded packs."
}

func (w *sdioWrapper) Detect(ctx context.Context) (tools.Status, error) {
	paths := []string{
		`C:\tools\SDIO\SDIO_x64_R764.exe`,
		`C:\tools\sdio\SDIO.exe`,
		`%USERPROFILE%\scoop\apps\snappy-driver-installer-origin\current\SDIO.exe`,
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

	res, err := w.run.Run(ctx, "winget list --id GlennDelahoy.SnappyDriverInstallerOrigin --accept-source-agreements", 15*time.Second)
	if err == nil && strings.Contains(res.Stdout, "GlennDelahoy") {
		return tools.Status{Installed: true}, nil
	}
	return tools.Status{}, nil
}

func (w *sdioWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "sdio-scan",
			Name:        "Scan for missing drivers",
			Description: "Use SDIO to scan hardware for missing or outdated drivers",
			Tier:        tools.TierGreen,
			Timeout:     2 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				res, err := w.run.Run(ctx, "SDIO.exe -checkupdates", 2*time.Minute)
				if err != nil {
					return "", fmt.Errorf("SDIO scan failed: %w. SDIO may need to be launched manually for full functionality", err)
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "sdio-install",
			Name:        "Install drivers via SDIO",
			Description: "Launch SDIO to install recommended driver updates",
			Tier:        tools.TierYellow,
			Timeout:     10 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				if _, err := w.run.Run(ctx, "start SDIO.exe", 5*time.Second); err != nil {
					return "", err
				}
				return "Snappy Driver Installer Origin launched. Follow the GUI to install drivers.", nil
			},
		},
	}
}
