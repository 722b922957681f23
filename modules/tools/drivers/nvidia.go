package drivers

import (
	"context"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// nvidiaWrapper inspects and updates NVIDIA GPU drivers through nvidia-smi
// and winget.
type nvidiaWrapper struct {
	run shell.Runner
}

func newNvidiaWrapper(run shell.Runner) *nvidiaWrapper {
	return &nvidiaWrapper{run: run}
}

func (w *nvidiaWrapper) ID() string   { return "nvidia-downloader" }
func (w *nvidiaWrapper) Name() string { return "NVIDIA Driver Tools" }
func (w *nvidiaWrapper) Description() string {
	return "Detect NVIDIA GPU and check for latest driver updates via nvidia-smi and winget."
}

// Detect probes nvidia-smi, which is bundled with the driver itself; a
// working probe means an NVIDIA GPU with a driver is present.
func (w *nvidiaWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "nvidia-smi --query-gpu=driver_version --format=csv,noheader", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Version: res.Stdout, Path: "nvidia-smi"}, nil
}

func (w *nvidiaWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "nvidia-gpu-info",
			Name:        "GPU info",
			Description: "Get detailed NVIDIA GPU information (model, driver, VRAM, temperature)",
			Tier:        tools.TierGreen,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				res, err := w.run.Run(ctx, "nvidia-smi --query-gpu=name,driver_version,memory.total,memory.used,memory.free,temperature.gpu,utilization.gpu,utilization.memory --format=csv", 15*time.Second)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "nvidia-driver-version",
			Name:        "Current driver version",
			Description: "Get the currently installed NVIDIA driver version",
			Tier:        tools.TierGreen,
			Timeout:     10 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				res, err := w.run.Run(ctx, "nvidia-smi --query-gpu=driver_version,name --format=csv,noheader", 10*time.Second)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "nvidia-check-update",
			Name:        "Check for driver update",
			Description: "Check if a newer NVIDIA driver is available via winget",
			Tier:        tools.TierGreen,
			Timeout:     45 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				res, err := w.run.Run(ctx, `winget upgrade --query "NVIDIA" --accept-source-agreements`, 30*time.Second)
				if err == nil {
					return res.Stdout, nil
				}
				// winget has no NVIDIA entry on driver-only installs; fall
				// back to the WMI view of the video controller.
				res, err = w.run.Run(ctx, shell.PowerShell(`Get-WmiObject Win32_VideoController | Where-Object { $_.Name -like '*NVIDIA*' } | Select-Object Name, DriverVersion, DriverDate | Format-List | Out-String`), 15*time.Second)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "nvidia-install-update",
			Name:        "Update NVIDIA driver",
			Description: "Download and install the latest NVIDIA driver via winget",
			Tier:        tools.TierYellow,
			Timeout:     5 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				res, err := w.run.Run(ctx, "winget upgrade --id Nvidia.GeForceExperience --accept-package-agreements --accept-source-agreements", 5*time.Minute)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
	}
}
