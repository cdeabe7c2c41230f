// ABOUTME: SettingsDialogModel edits the five persisted settings in an overlay
// ABOUTME: Enter confirms with SettingsSavedMsg; esc dismisses without changes

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luulek/depotfetch/internal/config"
)

// toggle is one boolean row of the settings dialog.
type toggle struct {
	label string
	get   func(config.Settings) bool
	set   func(*config.Settings, bool)
}

var toggles = []toggle{
	{
		label: "Dark theme",
		get:   func(s config.Settings) bool { return s.DarkTheme },
		set:   func(s *config.Settings, v bool) { s.DarkTheme = v },
	},
	{
		label: "Delete extracted files after install",
		get:   func(s config.Settings) bool { return s.DeleteAfter },
		set:   func(s *config.Settings, v bool) { s.DeleteAfter = v },
	},
	{
		label: "Show a desktop notification when done",
		get:   func(s config.Settings) bool { return s.WinNotify },
		set:   func(s *config.Settings, v bool) { s.WinNotify = v },
	},
	{
		label: "Restart Steam when done",
		get:   func(s config.Settings) bool { return s.RestartSteam },
		set:   func(s *config.Settings, v bool) { s.RestartSteam = v },
	},
}

// SettingsDialogModel is the settings overlay. Row 0 is the steam path,
// rows 1.. are toggles.
type SettingsDialogModel struct {
	settings config.Settings
	path     InputModel
	focus    int
	styles   ThemeStyles
}

// NewSettingsDialogModel opens the dialog on a copy of s.
func NewSettingsDialogModel(s config.Settings, styles ThemeStyles) SettingsDialogModel {
	return SettingsDialogModel{
		settings: s,
		path:     NewInputModel("path to the folder holding steam.exe").SetValue(s.SteamPath),
		styles:   styles,
	}
}

// Init returns nil; no commands needed at startup.
func (m SettingsDialogModel) Init() tea.Cmd {
	return nil
}

// Update moves focus, edits the path, toggles options, and confirms.
func (m SettingsDialogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyEsc:
		return m, dismissOverlayCmd
	case tea.KeyEnter:
		out := m.Settings()
		return m, func() tea.Msg { return SettingsSavedMsg{Settings: out} }
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % (len(toggles) + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + len(toggles)) % (len(toggles) + 1)
	case tea.KeySpace:
		if m.focus > 0 {
			t := toggles[m.focus-1]
			t.set(&m.settings, !t.get(m.settings))
			return m, nil
		}
		fallthrough
	default:
		if m.focus == 0 {
			updated, _ := m.path.Update(key)
			m.path = updated.(InputModel)
		}
	}
	m.path = m.path.SetFocused(m.focus == 0)
	return m, nil
}

// View renders the dialog box.
func (m SettingsDialogModel) View() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Settings"))
	b.WriteString("\n\n")

	b.WriteString(m.cursor(0) + s.Label.Render("Steam location: "))
	b.WriteString(s.Input.Render(m.path.View()))
	b.WriteByte('\n')
	for i, t := range toggles {
		box := "[ ]"
		if t.get(m.settings) {
			box = "[x]"
		}
		b.WriteString(m.cursor(i+1) + box + " " + s.Label.Render(t.label))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(s.Muted.Render("tab move · space toggle · enter save · esc cancel"))
	return s.Dialog.Render(b.String())
}

// Settings returns the edited settings.
func (m SettingsDialogModel) Settings() config.Settings {
	out := m.settings
	out.SteamPath = strings.TrimSpace(m.path.Value())
	return out
}

func (m SettingsDialogModel) cursor(row int) string {
	if row == m.focus {
		return m.styles.Key.Render("> ")
	}
	return "  "
}
