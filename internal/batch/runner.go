// ABOUTME: Batch runner: accepts install batches and runs each on its own goroutine
// ABOUTME: Batches are serialized by a weight-1 semaphore; one Outcome per batch

package batch

import (
	"context"
	"errors"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/installer"
	"github.com/luulek/depotfetch/internal/log"
)

// ErrEmptyBatch is returned by Submit for an empty item list.
var ErrEmptyBatch = errors.New("nothing is in order")

// Installer runs one batch to completion.
type Installer interface {
	Install(ctx context.Context, root string, settings config.Settings, items []string) (*installer.Result, error)
}

// Outcome is the terminal result of one batch. Exactly one of Result and Err
// is set.
type Outcome struct {
	ID       int
	Items    []string
	Settings config.Settings
	Result   *installer.Result
	Err      error
}

// OK reports whether the batch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Handle tracks a submitted batch.
type Handle struct {
	ID    int
	Items []string
	done  chan Outcome
}

// Done yields the batch outcome once, then is closed.
func (h *Handle) Done() <-chan Outcome {
	return h.done
}

// Runner owns the lifecycle of submitted batches.
type Runner struct {
	inst    Installer
	ctx     context.Context
	sem     *semaphore.Weighted
	deliver func(Outcome)

	mu     sync.Mutex
	active map[int]*Handle
	nextID int
	wg     sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithDelivery registers fn to receive every outcome. fn is called on the
// batch goroutine before the handle's channel is closed.
func WithDelivery(fn func(Outcome)) Option {
	return func(r *Runner) { r.deliver = fn }
}

// New creates a Runner. ctx bounds every batch it runs.
func New(ctx context.Context, inst Installer, opts ...Option) *Runner {
	r := &Runner{
		inst:   inst,
		ctx:    ctx,
		sem:    semaphore.NewWeighted(1),
		active: make(map[int]*Handle),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit starts a batch and returns immediately. The items are copied, so
// later changes to the caller's slice do not affect the batch.
func (r *Runner) Submit(items []string, settings config.Settings) (*Handle, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	r.mu.Lock()
	h := &Handle{
		ID:    r.nextID,
		Items: slices.Clone(items),
		done:  make(chan Outcome, 1),
	}
	r.nextID++
	r.active[h.ID] = h
	r.mu.Unlock()

	log.Debug("batch %d: submitted %d item(s)", h.ID, len(h.Items))

	r.wg.Add(1)
	go r.run(h, settings)
	return h, nil
}

func (r *Runner) run(h *Handle, settings config.Settings) {
	defer r.wg.Done()

	out := Outcome{ID: h.ID, Items: slices.Clone(h.Items), Settings: settings}
	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		out.Err = err
	} else {
		out.Result, out.Err = r.inst.Install(r.ctx, settings.SteamPath, settings, h.Items)
		r.sem.Release(1)
	}

	if out.Err != nil {
		log.Warn("batch %d: %v", h.ID, out.Err)
	} else {
		log.Info("batch %d: done in %s", h.ID, out.Result.Elapsed)
	}

	r.mu.Lock()
	delete(r.active, h.ID)
	r.mu.Unlock()

	if r.deliver != nil {
		r.deliver(out)
	}
	h.done <- out
	close(h.done)
}

// Active returns the number of batches not yet delivered.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Wait blocks until every submitted batch has delivered its outcome.
func (r *Runner) Wait() {
	r.wg.Wait()
}
