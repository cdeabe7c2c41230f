// ABOUTME: External dependencies of the TUI expressed as narrow interfaces
// ABOUTME: Sink forwards batch outcomes from runner goroutines into the tea.Program

package tui

import (
	"context"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luulek/depotfetch/internal/batch"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/overlay"
)

// CatalogLister lists the archive names offered for install.
type CatalogLister interface {
	List(ctx context.Context) ([]string, error)
}

// BatchSubmitter starts install batches without blocking.
type BatchSubmitter interface {
	Submit(items []string, settings config.Settings) (*batch.Handle, error)
}

// OverlayApplier applies the online-fix overlay to a game directory.
type OverlayApplier interface {
	Apply(target string) (*overlay.Result, error)
}

// PostInstaller runs the post-success actions enabled in settings.
type PostInstaller interface {
	Run(ctx context.Context, settings config.Settings)
}

// AppDeps groups everything the app model talks to.
type AppDeps struct {
	Catalog CatalogLister
	Runner  BatchSubmitter
	Overlay OverlayApplier
	Post    PostInstaller // optional

	State *config.State
	Save  func(*config.State) error // persists a snapshot of State
}

// Sink forwards runner outcomes into the program. Outcomes that arrive
// before the program is attached are queued and flushed on attach. Every
// outcome stays listed in Unhandled until the app model processes it.
type Sink struct {
	mu       sync.Mutex
	program  *tea.Program
	detached bool
	pending  []tea.Msg
	unacked  map[int]batch.Outcome
}

// NewSink creates a detached Sink.
func NewSink() *Sink {
	return &Sink{unacked: make(map[int]batch.Outcome)}
}

// Deliver is the batch.Runner delivery callback.
func (s *Sink) Deliver(o batch.Outcome) {
	msg := BatchDoneMsg{Outcome: o}
	s.mu.Lock()
	s.unacked[o.ID] = o
	if s.detached {
		s.mu.Unlock()
		return
	}
	p := s.program
	if p == nil {
		s.pending = append(s.pending, msg)
	}
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Unhandled returns the outcomes the app model never processed, by batch ID.
// Call it after the program has exited and the runner has drained.
func (s *Sink) Unhandled() []batch.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]batch.Outcome, 0, len(s.unacked))
	for _, o := range s.unacked {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b batch.Outcome) int { return a.ID - b.ID })
	return out
}

func (s *Sink) attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(pending) > 0 {
		go func() {
			for _, msg := range pending {
				p.Send(msg)
			}
		}()
	}
}

// detach stops forwarding; later outcomes are only recorded.
func (s *Sink) detach() {
	s.mu.Lock()
	s.program = nil
	s.detached = true
	s.pending = nil
	s.mu.Unlock()
}

func (s *Sink) ack(id int) {
	s.mu.Lock()
	delete(s.unacked, id)
	s.mu.Unlock()
}
