// ABOUTME: InputModel is a single-line rune editor used for search and path prompts
// ABOUTME: Value semantics like the other leaf models; no mutex needed

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// InputModel edits one line of text.
type InputModel struct {
	value       []rune
	cursor      int
	placeholder string
	focused     bool
}

// NewInputModel creates an empty, focused input.
func NewInputModel(placeholder string) InputModel {
	return InputModel{placeholder: placeholder, focused: true}
}

// Init returns nil; no commands needed at startup.
func (m InputModel) Init() tea.Cmd {
	return nil
}

// Update handles editing keys. Keys it does not own are ignored.
func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}
	switch key.Type {
	case tea.KeyRunes:
		m.insert(key.Runes)
	case tea.KeySpace:
		m.insert([]rune{' '})
	case tea.KeyBackspace:
		if m.cursor > 0 {
			m.value = append(m.value[:m.cursor-1:m.cursor-1], m.value[m.cursor:]...)
			m.cursor--
		}
	case tea.KeyDelete:
		if m.cursor < len(m.value) {
			m.value = append(m.value[:m.cursor:m.cursor], m.value[m.cursor+1:]...)
		}
	case tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyRight:
		if m.cursor < len(m.value) {
			m.cursor++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		m.cursor = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.cursor = len(m.value)
	case tea.KeyCtrlU:
		m.value = nil
		m.cursor = 0
	}
	return m, nil
}

// View renders the text with a block cursor, or the placeholder when empty.
func (m InputModel) View() string {
	if len(m.value) == 0 && !m.focused {
		return m.placeholder
	}
	if len(m.value) == 0 {
		return "█" + m.placeholder
	}
	if !m.focused {
		return string(m.value)
	}
	if m.cursor == len(m.value) {
		return string(m.value) + "█"
	}
	return string(m.value[:m.cursor]) + "█" + string(m.value[m.cursor+1:])
}

// Value returns the current text.
func (m InputModel) Value() string {
	return string(m.value)
}

// SetValue replaces the text and moves the cursor to the end.
func (m InputModel) SetValue(s string) InputModel {
	m.value = []rune(s)
	m.cursor = len(m.value)
	return m
}

// SetFocused toggles whether keys are handled.
func (m InputModel) SetFocused(f bool) InputModel {
	m.focused = f
	return m
}

func (m *InputModel) insert(rs []rune) {
	v := make([]rune, 0, len(m.value)+len(rs))
	v = append(v, m.value[:m.cursor]...)
	v = append(v, rs...)
	m.value = append(v, m.value[m.cursor:]...)
	m.cursor += len(rs)
}
