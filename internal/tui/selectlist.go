// ABOUTME: SelectListModel is the scrollable catalog list filtered by the search box
// ABOUTME: Falls back to fuzzy suggestions when the substring filter matches nothing

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luulek/depotfetch/internal/catalog"
)

// SelectListModel is a filterable, scrollable list of archive names.
// Implements tea.Model with value semantics.
type SelectListModel struct {
	items      []string
	visible    []string
	suggesting bool // visible holds fuzzy suggestions, not filter matches
	selected   int
	scrollOff  int
	maxHeight  int
	filter     string
	width      int
	styles     ThemeStyles
}

// NewSelectListModel creates a SelectListModel with the given items.
func NewSelectListModel(items []string) SelectListModel {
	m := SelectListModel{
		items:     items,
		maxHeight: 10,
		styles:    Styles(true),
	}
	m.applyFilter()
	return m
}

// Init returns nil; no commands needed at startup.
func (m SelectListModel) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (m SelectListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyUp:
			m.moveUp()
		case tea.KeyDown:
			m.moveDown()
		case tea.KeyPgUp:
			for range m.maxHeight {
				m.moveUp()
			}
		case tea.KeyPgDown:
			for range m.maxHeight {
				m.moveDown()
			}
		}
	}
	return m, nil
}

// View renders the visible rows of the viewport.
func (m SelectListModel) View() string {
	if len(m.visible) == 0 {
		return m.styles.Muted.Render("  (no matches)")
	}

	end := min(m.scrollOff+m.maxHeight, len(m.visible))
	var b strings.Builder
	if m.suggesting {
		b.WriteString(m.styles.Muted.Render("  No exact match. Did you mean:"))
		b.WriteByte('\n')
	}
	for i := m.scrollOff; i < end; i++ {
		if i > m.scrollOff {
			b.WriteByte('\n')
		}
		line := "  " + m.visible[i]
		if m.width > 0 {
			line = padRight(line, m.width)
		}
		if i == m.selected {
			line = m.styles.Selection.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

// SetFilter sets the search text and refilters. Returns a new model.
func (m SelectListModel) SetFilter(f string) SelectListModel {
	if f == m.filter {
		return m
	}
	m.filter = f
	m.selected = 0
	m.scrollOff = 0
	m.applyFilter()
	return m
}

// SetItems replaces the item list and resets selection. Returns a new model.
func (m SelectListModel) SetItems(items []string) SelectListModel {
	m.items = items
	m.selected = 0
	m.scrollOff = 0
	m.applyFilter()
	return m
}

// SetSize sets the row width and the number of visible rows.
func (m SelectListModel) SetSize(width, height int) SelectListModel {
	m.width = width
	m.maxHeight = max(height, 1)
	m.adjustScroll()
	return m
}

// SetStyles switches the theme used for rendering.
func (m SelectListModel) SetStyles(s ThemeStyles) SelectListModel {
	m.styles = s
	return m
}

// Selected returns the highlighted name, or "" when nothing is visible.
func (m SelectListModel) Selected() string {
	if len(m.visible) == 0 {
		return ""
	}
	return m.visible[m.selected]
}

// SelectedIndex returns the index within the visible items.
func (m SelectListModel) SelectedIndex() int {
	return m.selected
}

// VisibleItems returns the currently shown names.
func (m SelectListModel) VisibleItems() []string {
	return m.visible
}

// Suggesting reports whether the visible items are fuzzy suggestions.
func (m SelectListModel) Suggesting() bool {
	return m.suggesting
}

func (m *SelectListModel) moveUp() {
	if m.selected > 0 {
		m.selected--
		m.adjustScroll()
	}
}

func (m *SelectListModel) moveDown() {
	if m.selected < len(m.visible)-1 {
		m.selected++
		m.adjustScroll()
	}
}

func (m *SelectListModel) adjustScroll() {
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+m.maxHeight {
		m.scrollOff = m.selected - m.maxHeight + 1
	}
}

func (m *SelectListModel) applyFilter() {
	m.suggesting = false
	m.visible = catalog.Filter(m.items, m.filter)
	if len(m.visible) == 0 && m.filter != "" {
		m.visible = catalog.Suggest(m.items, m.filter)
		m.suggesting = len(m.visible) > 0
	}
}
