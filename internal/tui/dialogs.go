// ABOUTME: Small overlay dialogs: the online-fix path prompt and the message box
// ABOUTME: Both dismiss with DismissOverlayMsg; the prompt confirms with OverlayRequestMsg

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PathPromptModel asks for the game directory the overlay is applied to.
type PathPromptModel struct {
	input  InputModel
	styles ThemeStyles
}

// NewPathPromptModel creates an empty prompt.
func NewPathPromptModel(styles ThemeStyles) PathPromptModel {
	return PathPromptModel{
		input:  NewInputModel("game folder containing UnityCrashHandler64.exe"),
		styles: styles,
	}
}

// Init returns nil; no commands needed at startup.
func (m PathPromptModel) Init() tea.Cmd {
	return nil
}

// Update edits the path; enter confirms, esc cancels. An empty path cancels.
func (m PathPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyEsc:
		return m, dismissOverlayCmd
	case tea.KeyEnter:
		target := strings.TrimSpace(m.input.Value())
		if target == "" {
			return m, dismissOverlayCmd
		}
		return m, func() tea.Msg { return OverlayRequestMsg{Target: target} }
	}
	updated, _ := m.input.Update(key)
	m.input = updated.(InputModel)
	return m, nil
}

// View renders the prompt.
func (m PathPromptModel) View() string {
	s := m.styles
	body := s.Title.Render("Insert Online-Fix (only unity)") + "\n\n" +
		s.Input.Render(m.input.View()) + "\n\n" +
		s.Muted.Render("enter apply · esc cancel")
	return s.Dialog.Render(body)
}

// MessageBoxModel shows one informational or error message.
type MessageBoxModel struct {
	title   string
	text    string
	isError bool
	styles  ThemeStyles
}

// NewMessageBox creates an info box.
func NewMessageBox(title, text string, styles ThemeStyles) MessageBoxModel {
	return MessageBoxModel{title: title, text: text, styles: styles}
}

// NewErrorBox creates an error box.
func NewErrorBox(text string, styles ThemeStyles) MessageBoxModel {
	return MessageBoxModel{title: "Error", text: text, isError: true, styles: styles}
}

// Init returns nil; no commands needed at startup.
func (m MessageBoxModel) Init() tea.Cmd {
	return nil
}

// Update dismisses the box on enter, esc or space.
func (m MessageBoxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			return m, dismissOverlayCmd
		}
	}
	return m, nil
}

// View renders the box.
func (m MessageBoxModel) View() string {
	s := m.styles
	title := s.Title.Render(m.title)
	text := s.Label.Render(m.text)
	if m.isError {
		title = s.Error.Render(m.title)
	}
	return s.Dialog.Render(title + "\n\n" + text + "\n\n" + s.Muted.Render("enter to close"))
}

// Text returns the message.
func (m MessageBoxModel) Text() string {
	return m.text
}

// IsError reports whether this is an error box.
func (m MessageBoxModel) IsError() bool {
	return m.isError
}
