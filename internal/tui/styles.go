// ABOUTME: Lipgloss palette for the dark and light themes
// ABOUTME: Theme selection follows the dark_theme setting and can be switched at runtime

package tui

import "github.com/charmbracelet/lipgloss"

// ThemeStyles holds every style the views render with.
type ThemeStyles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Selection lipgloss.Style
	Input     lipgloss.Style
	Panel     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Dialog    lipgloss.Style
	Key       lipgloss.Style
}

type palette struct {
	fg, bg, muted, accent, panel, errc, ok lipgloss.Color
}

// The dark palette mirrors the #111111 / #222222 scheme of the desktop app.
var (
	darkPalette = palette{
		fg: "#FFFFFF", bg: "#111111", muted: "#8A8A8A", accent: "#5FAFFF",
		panel: "#222222", errc: "#FF5F5F", ok: "#87D787",
	}
	lightPalette = palette{
		fg: "#1C1C1C", bg: "#FFFFFF", muted: "#6C6C6C", accent: "#005FAF",
		panel: "#EEEEEE", errc: "#AF0000", ok: "#008700",
	}
)

// Styles returns the style set for the requested theme.
func Styles(dark bool) ThemeStyles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return ThemeStyles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Label:     lipgloss.NewStyle().Foreground(p.fg),
		Muted:     lipgloss.NewStyle().Foreground(p.muted),
		Selection: lipgloss.NewStyle().Bold(true).Foreground(p.bg).Background(p.accent),
		Input:     lipgloss.NewStyle().Foreground(p.fg).Background(p.panel),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.muted).
			Padding(0, 1),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.errc),
		Success: lipgloss.NewStyle().Bold(true).Foreground(p.ok),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
		Key: lipgloss.NewStyle().Foreground(p.accent),
	}
}

// applyBackground tells lipgloss which background to assume so adaptive
// colors and glamour's auto style match the selected theme.
func applyBackground(dark bool) {
	lipgloss.SetHasDarkBackground(dark)
}
