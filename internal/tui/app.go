// ABOUTME: Root AppModel for the catalog browser: search, order queue, history, dialogs
// ABOUTME: Batches run on the runner's goroutines; outcomes come back as BatchDoneMsg

package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luulek/depotfetch/internal/batch"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/fsutil"
	"github.com/luulek/depotfetch/internal/installer"
	"github.com/luulek/depotfetch/internal/log"
	"github.com/luulek/depotfetch/internal/overlay"
)

const (
	msgNothingSelected = "Nothing is selected!"
	msgNothingInOrder  = "Nothing is in order!"
	labelFetching      = "Fetching Manifests & LUA's from database..."
)

// shared holds state that must survive AppModel value copies.
type shared struct {
	ctx context.Context
	ack func(batchID int) // marks an outcome as processed; nil in tests

	// Saves run as concurrent commands. Each gets a sequence number when
	// issued; a save older than the last one written is dropped.
	saveMu  sync.Mutex
	issued  uint64
	written uint64
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	sh   *shared
	deps AppDeps

	settings config.Settings
	history  []string
	order    []string

	catalog    []string
	loaded     bool
	loadErr    error
	running    int // batches submitted and not yet delivered
	applying   bool
	lastStatus string

	search  InputModel
	list    SelectListModel
	overlay tea.Model // nil = no dialog

	styles        ThemeStyles
	width, height int
}

// NewAppModel creates an AppModel wired with deps.
func NewAppModel(deps AppDeps) AppModel {
	st := deps.State
	if st == nil {
		st = config.DefaultState()
		deps.State = st
	}
	styles := Styles(st.Settings.DarkTheme)
	return AppModel{
		sh:       &shared{ctx: context.Background()},
		deps:     deps,
		settings: st.Settings,
		history:  slices.Clone(st.Added),
		search:   NewInputModel("Enter a steam game name or a steam app id."),
		list:     NewSelectListModel(nil).SetStyles(styles),
		styles:   styles,
	}
}

// Init starts fetching the catalog.
func (m AppModel) Init() tea.Cmd {
	lister := m.deps.Catalog
	ctx := m.sh.ctx
	return func() tea.Msg {
		names, err := lister.List(ctx)
		return CatalogLoadedMsg{Names: names, Err: err}
	}
}

// Update routes messages to the dialog, the list, or the app itself.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list = m.list.SetSize(m.listWidth(), m.listHeight())
		if m.overlay != nil {
			m.overlay, _ = m.overlay.Update(msg)
		}
		return m, nil

	case CatalogLoadedMsg:
		m.loaded = true
		if msg.Err != nil {
			m.loadErr = msg.Err
			log.Error("catalog: %v", msg.Err)
			return m.showError(fmt.Sprintf("Failed to fetch files: %v", msg.Err)), nil
		}
		m.catalog = msg.Names
		m.list = m.list.SetItems(msg.Names)
		return m, nil

	case BatchDoneMsg:
		return m.handleBatchDone(msg.Outcome)

	case OverlayRequestMsg:
		m.overlay = nil
		m.applying = true
		applier := m.deps.Overlay
		target := msg.Target
		return m, func() tea.Msg {
			res, err := applier.Apply(target)
			return OverlayDoneMsg{Target: target, Result: res, Err: err}
		}

	case OverlayDoneMsg:
		m.applying = false
		if msg.Err != nil {
			log.Error("overlay: %s: %v", msg.Target, msg.Err)
			return m.showError(overlay.Message(msg.Err)), nil
		}
		text := overlay.SuccessMessage + skippedNote(msg.Result.Skipped)
		return m.showInfo("Info", text), nil

	case SettingsSavedMsg:
		m.overlay = nil
		m = m.applySettings(msg.Settings)
		return m, m.saveCmd()

	case stateSavedMsg:
		return m.showError(fmt.Sprintf("Error: saving state: %v", msg.Err)), nil

	case DismissOverlayMsg:
		m.overlay = nil
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.overlay != nil {
			var cmd tea.Cmd
			m.overlay, cmd = m.overlay.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.addNow()
	case tea.KeyTab:
		return m.addToOrder(), nil
	case tea.KeyCtrlR:
		return m.startOrder()
	case tea.KeyCtrlX:
		if len(m.order) > 0 {
			m.order = m.order[:len(m.order)-1]
		}
		return m, nil
	case tea.KeyCtrlP:
		m.overlay = NewSettingsDialogModel(m.settings, m.styles)
		return m, nil
	case tea.KeyCtrlO:
		m.overlay = NewPathPromptModel(m.styles)
		return m, nil
	case tea.KeyCtrlT:
		s := m.settings
		s.DarkTheme = !s.DarkTheme
		m = m.applySettings(s)
		return m, m.saveCmd()
	case tea.KeyF1:
		m.overlay = NewHelpModel(m.width, m.settings.DarkTheme)
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		updated, _ := m.list.Update(msg)
		m.list = updated.(SelectListModel)
		return m, nil
	}

	updated, _ := m.search.Update(msg)
	m.search = updated.(InputModel)
	m.list = m.list.SetFilter(m.search.Value())
	return m, nil
}

// addNow installs the selected item immediately.
func (m AppModel) addNow() (tea.Model, tea.Cmd) {
	item := m.list.Selected()
	if item == "" {
		return m.showInfo("No Selection", msgNothingSelected), nil
	}
	return m.submit([]string{item})
}

// addToOrder queues the selected item. Duplicates are allowed.
func (m AppModel) addToOrder() AppModel {
	item := m.list.Selected()
	if item == "" {
		return m.showInfo("No Selection", msgNothingSelected)
	}
	m.order = append(slices.Clip(m.order), item)
	return m
}

// startOrder submits the whole queue as one batch and clears it.
func (m AppModel) startOrder() (tea.Model, tea.Cmd) {
	if len(m.order) == 0 {
		return m.showInfo("Order", msgNothingInOrder), nil
	}
	items := m.order
	m.order = nil
	return m.submit(items)
}

func (m AppModel) submit(items []string) (tea.Model, tea.Cmd) {
	h, err := m.deps.Runner.Submit(items, m.settings)
	if errors.Is(err, batch.ErrEmptyBatch) {
		return m.showInfo("Order", msgNothingInOrder), nil
	}
	if err != nil {
		return m.showError("Error: " + err.Error()), nil
	}
	m.running++
	m.lastStatus = fmt.Sprintf("Batch %d started (%d item(s))", h.ID, len(h.Items))
	return m, nil
}

func (m AppModel) handleBatchDone(o batch.Outcome) (tea.Model, tea.Cmd) {
	if m.sh.ack != nil {
		m.sh.ack(o.ID)
	}
	m.running = max(m.running-1, 0)
	if !o.OK() {
		m.lastStatus = fmt.Sprintf("Batch %d failed", o.ID)
		return m.showError(installer.Message(o.Err)), nil
	}

	m.lastStatus = fmt.Sprintf("Batch %d done", o.ID)
	m.history = append(slices.Clip(m.history), o.Items...)
	m = m.showInfo("Info", installer.SuccessMessage(o.Result)+skippedNote(o.Result.Skipped))

	cmds := []tea.Cmd{m.saveCmd()}
	if post := m.deps.Post; post != nil {
		ctx, settings := m.sh.ctx, o.Settings
		cmds = append(cmds, func() tea.Msg {
			post.Run(ctx, settings)
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}

func (m AppModel) applySettings(s config.Settings) AppModel {
	themeChanged := s.DarkTheme != m.settings.DarkTheme
	m.settings = s
	if themeChanged {
		applyBackground(s.DarkTheme)
		m.styles = Styles(s.DarkTheme)
		m.list = m.list.SetStyles(m.styles)
	}
	return m
}

// saveCmd persists a snapshot of the current settings and history.
func (m AppModel) saveCmd() tea.Cmd {
	save := m.deps.Save
	if save == nil {
		return nil
	}
	snap := &config.State{Settings: m.settings, Added: slices.Clone(m.history)}
	sh := m.sh
	sh.saveMu.Lock()
	sh.issued++
	seq := sh.issued
	sh.saveMu.Unlock()

	return func() tea.Msg {
		sh.saveMu.Lock()
		defer sh.saveMu.Unlock()
		if seq < sh.written {
			log.Debug("dropping stale state save %d (written %d)", seq, sh.written)
			return nil
		}
		if err := save(snap); err != nil {
			log.Error("saving state: %v", err)
			return stateSavedMsg{Err: err}
		}
		sh.written = seq
		return nil
	}
}

func (m AppModel) showInfo(title, text string) AppModel {
	m.overlay = NewMessageBox(title, text, m.styles)
	return m
}

func (m AppModel) showError(text string) AppModel {
	m.overlay = NewErrorBox(text, m.styles)
	return m
}

func skippedNote(skipped []fsutil.Skipped) string {
	if len(skipped) == 0 {
		return ""
	}
	return fmt.Sprintf("\n%d file(s) could not be copied; see the log.", len(skipped))
}

// --- View ---

const sidePanelWidth = 32

// View renders the main screen, or the active dialog on top of it.
func (m AppModel) View() string {
	if m.overlay != nil {
		box := m.overlay.View()
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	s := m.styles
	header := s.Title.Render("depotfetch") + "  " + s.Muted.Render(m.statusLine())
	search := s.Label.Render("Search: ") + s.Input.Render(m.search.View())

	left := lipgloss.JoinVertical(lipgloss.Left,
		s.Label.Render(m.countLabel()),
		m.list.View(),
	)
	side := lipgloss.JoinVertical(lipgloss.Left,
		m.panel("Order", m.order),
		m.panel("Previously Added", m.history),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", side)

	footer := s.Muted.Render("enter add · tab add to order · ctrl+r start order · ctrl+p settings · ctrl+o online-fix · F1 help · esc quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, search, "", body, "", footer)
}

func (m AppModel) statusLine() string {
	var parts []string
	if m.running > 0 {
		parts = append(parts, fmt.Sprintf("%d batch(es) running", m.running))
	}
	if m.applying {
		parts = append(parts, "applying Online-Fix")
	}
	if len(parts) == 0 && m.lastStatus != "" {
		parts = append(parts, m.lastStatus)
	}
	return strings.Join(parts, " · ")
}

func (m AppModel) countLabel() string {
	switch {
	case !m.loaded:
		return labelFetching
	case m.loadErr != nil:
		return "Failed to fetch the catalog."
	default:
		return fmt.Sprintf("Found %d Manifest & Lua's. Select one to download:", len(m.catalog))
	}
}

// panel renders a titled side list, showing the newest entries that fit.
func (m AppModel) panel(title string, items []string) string {
	s := m.styles
	rows := max(m.listHeight()/2-3, 3)
	inner := sidePanelWidth - 4

	lines := []string{s.Title.Render(title)}
	start := max(len(items)-rows, 0)
	if start > 0 {
		lines = append(lines, s.Muted.Render(fmt.Sprintf("… %d more", start)))
	}
	for _, it := range items[start:] {
		lines = append(lines, truncate(it, inner))
	}
	if len(items) == 0 {
		lines = append(lines, s.Muted.Render("(empty)"))
	}
	return s.Panel.Width(sidePanelWidth - 2).Render(strings.Join(lines, "\n"))
}

func (m AppModel) listWidth() int {
	return max(m.width-sidePanelWidth-2, 20)
}

func (m AppModel) listHeight() int {
	// header, search, blank, count label, blank, footer
	return max(m.height-6, 5)
}

// Order returns the queued items.
func (m AppModel) Order() []string {
	return m.order
}

// History returns the previously added items.
func (m AppModel) History() []string {
	return m.history
}

// Settings returns the current settings.
func (m AppModel) Settings() config.Settings {
	return m.settings
}

// Overlay returns the active dialog, or nil.
func (m AppModel) Overlay() tea.Model {
	return m.overlay
}
