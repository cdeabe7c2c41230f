// ABOUTME: Help overlay rendered from markdown with glamour
// ABOUTME: Rendered text is cached per width; falls back to raw markdown on error

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# depotfetch

Search the catalog by typing. Names match case-insensitively; when nothing
matches, close spellings are suggested.

| Key | Action |
|---|---|
| ↑ ↓ PgUp PgDn | move the selection |
| enter | **Add**: install the selected item now |
| tab | **Add To Order**: queue the selected item |
| ctrl+r | **Start Order**: install every queued item |
| ctrl+x | remove the last queued item |
| ctrl+p | settings |
| ctrl+o | insert Online-Fix into a Unity game folder |
| ctrl+t | switch between dark and light theme |
| F1 | this help |
| esc / ctrl+c | quit |

Installed manifests go to ` + "`config/depotcache`" + ` and scripts to
` + "`config/stplug-in`" + ` under the Steam location set in settings.
`

// HelpModel displays the key reference.
type HelpModel struct {
	width    int
	dark     bool
	rendered map[int]string
}

// NewHelpModel creates the help overlay for the given width and theme.
func NewHelpModel(width int, dark bool) HelpModel {
	return HelpModel{width: width, dark: dark, rendered: make(map[int]string)}
}

// Init returns nil; no commands needed at startup.
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update dismisses the help on any key.
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, dismissOverlayCmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the markdown.
func (m HelpModel) View() string {
	if out, ok := m.rendered[m.width]; ok {
		return out
	}
	out := renderMarkdown(helpMarkdown, m.width, m.dark)
	m.rendered[m.width] = out
	return out
}

func renderMarkdown(md string, width int, dark bool) string {
	style := "light"
	if dark {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}
