package debloat

import (
	"context"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// winutilWrapper drives Chris Titus Tech's WinUtil. The tool runs from a
// remote script, so detection only checks that PowerShell itself works.
type winutilWrapper struct {
	run shell.Runner
}

func newWinutilWrapper(run shell.Runner) *winutilWrapper {
	return &winutilWrapper{run: run}
}

func (w *winutilWrapper) ID() string   { return "winutil" }
func (w *winutilWrapper) Name() string { return "Chris Titus WinUtil" }
func (w *winutilWrapper) Description() string {
	return "All-in-one Windows utility by Chris Titus Tech. GUI-based debloat, tweaks, app installs, and system fixes."
}

func (w *winutilWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, shell.PowerShell("$PSVersionTable.PSVersion.Major"), 5*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Version: strings.TrimSpace(res.Stdout)}, nil
}

func (w *winutilWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "winutil-launch",
			Name:        "Launch WinUtil",
			Description: "Launch the Chris Titus WinUtil GUI for interactive debloating and tweaks",
			Tier:        tools.TierYellow,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				command := shell.PowerShell("Start-Process powershell -ArgumentList '-Command irm christitus.com/win | iex' -Verb RunAs")
				if _, err := w.run.Run(ctx, command, 15*time.Second); err != nil {
					return "", err
				}
				return "WinUtil launched in a new elevated window. Use the GUI to select tweaks and apps.", nil
			},
		},
		{
			ID:          "winutil-essential-tweaks",
			Name:        "Apply essential tweaks",
			Description: "Apply WinUtil essential tweaks (telemetry, Bing search, tips, ads)",
			Tier:        tools.TierRed,
			Timeout:     time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				res, err := w.run.Run(ctx, shell.PowerShell(essentialTweaksScript), time.Minute)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
	}
}

// essentialTweaksScript mirrors what WinUtil's Essential Tweaks button does,
// applied directly via registry so it works without the GUI.
var essentialTweaksScript = strings.Join([]string{
	`Set-ItemProperty -Path 'HKLM:\SOFTWARE\Policies\Microsoft\Windows\DataCollection' -Name 'AllowTelemetry' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`New-Item -Path 'HKCU:\Software\Policies\Microsoft\Windows\Explorer' -Force -ErrorAction SilentlyContinue | Out-Null`,
	`Set-ItemProperty -Path 'HKCU:\Software\Policies\Microsoft\Windows\Explorer' -Name 'DisableSearchBoxSuggestions' -Value 1 -Type DWord -Force`,
	`Set-ItemProperty -Path 'HKCU:\Software\Microsoft\Windows\CurrentVersion\ContentDeliveryManager' -Name 'SubscribedContent-338389Enabled' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`Set-ItemProperty -Path 'HKCU:\Software\Microsoft\Windows\CurrentVersion\ContentDeliveryManager' -Name 'SubscribedContent-310093Enabled' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`Set-ItemProperty -Path 'HKCU:\Software\Microsoft\Windows\CurrentVersion\ContentDeliveryManager' -Name 'SilentInstalledAppsEnabled' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`Set-ItemProperty -Path 'HKLM:\SOFTWARE\Microsoft\WcmSvc\wifinetworkmanager\config' -Name 'AutoConnectAllowedOEM' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`Set-ItemProperty -Path 'HKLM:\SOFTWARE\Policies\Microsoft\Windows\System' -Name 'EnableActivityFeed' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`Set-ItemProperty -Path 'HKLM:\SOFTWARE\Policies\Microsoft\Windows\System' -Name 'PublishUserActivities' -Value 0 -Type DWord -Force -ErrorAction SilentlyContinue`,
	`Write-Output 'Essential tweaks applied: telemetry off, Bing search off, tips off, WiFi Sense off, activity history off.'`,
}, "; ")
