// ABOUTME: Entry point for the interactive catalog browser
// ABOUTME: Creates the tea.Program, attaches the outcome sink, and blocks until exit

package tui

import (
	"context"
	"fmt"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luulek/depotfetch/internal/config"
)

// Run starts the TUI and blocks until the user quits. Outcomes delivered to
// sink while the program runs arrive as BatchDoneMsg. The returned state
// holds the settings and history of the model at exit.
func Run(ctx context.Context, deps AppDeps, sink *Sink) (*config.State, error) {
	m := NewAppModel(deps)
	m.sh.ctx = ctx
	applyBackground(m.settings.DarkTheme)

	p := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithAltScreen(),
	)
	if sink != nil {
		m.sh.ack = sink.ack
		sink.attach(p)
		defer sink.detach()
	}

	final, err := p.Run()
	if fm, ok := final.(AppModel); ok {
		m = fm
	}
	st := &config.State{Settings: m.settings, Added: slices.Clone(m.history)}
	if err != nil {
		return st, fmt.Errorf("bubble tea: %w", err)
	}
	return st, nil
}
