// ABOUTME: Side effects after a successful batch: desktop notification and client restart
// ABOUTME: Every action is best-effort; failures are logged and never reach the user

package postinstall

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/fsutil"
	"github.com/luulek/depotfetch/internal/installer"
	"github.com/luulek/depotfetch/internal/log"
)

const (
	// Title heads every desktop notification.
	Title = "depotfetch"
	// DoneText is the notification body after a successful batch.
	DoneText = "Done putting steam manifests and luas into steam."
)

// Actions runs the post-success steps selected in settings.
type Actions struct {
	Notifier  *Notifier
	Restarter *Restarter
}

// New returns Actions using the platform notifier with icon and the
// process-table restarter.
func New(icon string) *Actions {
	return &Actions{
		Notifier:  NewNotifier(icon),
		Restarter: NewRestarter(),
	}
}

// Run performs the enabled actions for a batch that succeeded.
func (a *Actions) Run(ctx context.Context, settings config.Settings) {
	if settings.WinNotify && a.Notifier != nil {
		if err := a.Notifier.Notify(ctx, Title, DoneText); err != nil {
			log.Debug("postinstall: notify: %v", err)
		}
	}
	if settings.RestartSteam && a.Restarter != nil {
		if err := a.Restarter.Restart(ctx, settings.SteamPath); err != nil {
			log.Debug("postinstall: restart: %v", err)
		}
	}
}

// Notifier shows desktop notifications through the platform's command-line
// notification tool.
type Notifier struct {
	Icon string
	GOOS string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewNotifier returns a Notifier for the running platform.
func NewNotifier(icon string) *Notifier {
	return &Notifier{Icon: icon, GOOS: runtime.GOOS, run: runCommand}
}

// Notify shows title and body. The icon is used only when it exists.
func (n *Notifier) Notify(ctx context.Context, title, body string) error {
	name, args := n.command(title, body)
	if name == "" {
		return fmt.Errorf("notifications unsupported on %s", n.GOOS)
	}
	return n.run(ctx, name, args...)
}

func (n *Notifier) command(title, body string) (string, []string) {
	icon := ""
	if n.Icon != "" && fsutil.Exists(n.Icon) {
		icon = n.Icon
	}

	switch n.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		args := []string{"--app-name", Title}
		if icon != "" {
			args = append(args, "--icon", icon)
		}
		return "notify-send", append(args, title, body)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		return "osascript", []string{"-e", script}
	case "windows":
		script := fmt.Sprintf(toastScript, psQuote(title), psQuote(body))
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}
	default:
		return "", nil
	}
}

const toastScript = `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] > $null
$t = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$x = $t.GetElementsByTagName('text')
$x.Item(0).AppendChild($t.CreateTextNode(%s)) > $null
$x.Item(1).AppendChild($t.CreateTextNode(%s)) > $null
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('depotfetch').Show([Windows.UI.Notifications.ToastNotification]::new($t))`

// psQuote returns s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// proc is the subset of *process.Process the restarter needs.
type proc interface {
	NameWithContext(ctx context.Context) (string, error)
	KillWithContext(ctx context.Context) error
}

// Restarter kills every running client process and launches a fresh one
// from the installation root.
type Restarter struct {
	list  func(ctx context.Context) ([]proc, error)
	start func(path, dir string) error
}

// NewRestarter returns a Restarter backed by the OS process table.
func NewRestarter() *Restarter {
	return &Restarter{list: listProcesses, start: startDetached}
}

// Restart kills processes named like the main executable (any letter case)
// and starts root/steam.exe when it exists. Kill failures are logged and do
// not stop the relaunch.
func (r *Restarter) Restart(ctx context.Context, root string) error {
	procs, err := r.list(ctx)
	if err != nil {
		log.Debug("postinstall: listing processes: %v", err)
	}
	killed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.EqualFold(name, installer.MainExecutable) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			log.Debug("postinstall: kill %s: %v", name, err)
			continue
		}
		killed++
	}
	log.Debug("postinstall: killed %d process(es)", killed)

	exe := filepath.Join(root, installer.MainExecutable)
	if root == "" || !fsutil.Exists(exe) {
		return fmt.Errorf("%s not found", exe)
	}
	if err := r.start(exe, root); err != nil {
		return fmt.Errorf("starting %s: %w", exe, err)
	}
	return nil
}

func listProcesses(ctx context.Context) ([]proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	out := make([]proc, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out, nil
}

func startDetached(path, dir string) error {
	cmd := exec.Command(path)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
