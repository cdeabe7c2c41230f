// ABOUTME: Custom tea.Msg types for the TUI
// ABOUTME: Catalog loading, batch outcomes from the runner, overlay results, dialogs

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/luulek/depotfetch/internal/batch"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/overlay"
)

// --- Background results (sent via Program.Send or returned by tea.Cmd) ---

// CatalogLoadedMsg carries the archive names fetched at startup.
type CatalogLoadedMsg struct {
	Names []string
	Err   error
}

// BatchDoneMsg carries the outcome of one submitted batch.
type BatchDoneMsg struct{ Outcome batch.Outcome }

// OverlayDoneMsg carries the result of applying the online-fix overlay.
type OverlayDoneMsg struct {
	Target string
	Result *overlay.Result
	Err    error
}

// stateSavedMsg reports a failed state save; nil Err is never sent.
type stateSavedMsg struct{ Err error }

// --- Dialogs ---

// DismissOverlayMsg removes the current dialog.
type DismissOverlayMsg struct{}

func dismissOverlayCmd() tea.Msg {
	return DismissOverlayMsg{}
}

// SettingsSavedMsg carries the settings confirmed in the settings dialog.
type SettingsSavedMsg struct{ Settings config.Settings }

// OverlayRequestMsg asks the app to apply the overlay to Target.
type OverlayRequestMsg struct{ Target string }
