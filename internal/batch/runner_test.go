// ABOUTME: Tests for the batch runner with a fake installer
// ABOUTME: Verifies non-blocking submit, single delivery, item copying, and serialization

package batch

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/installer"
)

type fakeInstaller struct {
	release chan struct{} // when non-nil, Install blocks until it is closed
	err     error

	running atomic.Int32
	maxSeen atomic.Int32

	mu    sync.Mutex
	calls [][]string
	roots []string
}

func (f *fakeInstaller) Install(ctx context.Context, root string, _ config.Settings, items []string) (*installer.Result, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, items)
	f.roots = append(f.roots, root)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &installer.Result{Installed: items, Elapsed: time.Millisecond}, nil
}

func wait(t *testing.T, h *Handle) Outcome {
	t.Helper()
	select {
	case out := <-h.Done():
		return out
	case <-time.After(5 * time.Second):
		t.Fatalf("batch %d: no outcome", h.ID)
		return Outcome{}
	}
}

func TestSubmit_Empty(t *testing.T) {
	t.Parallel()

	r := New(context.Background(), &fakeInstaller{})
	if _, err := r.Submit(nil, config.DefaultSettings()); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Submit(nil) err = %v; want ErrEmptyBatch", err)
	}
	if _, err := r.Submit([]string{}, config.DefaultSettings()); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Submit([]) err = %v; want ErrEmptyBatch", err)
	}
}

func TestSubmit_DoesNotBlock(t *testing.T) {
	t.Parallel()

	fake := &fakeInstaller{release: make(chan struct{})}
	r := New(context.Background(), fake)

	h, err := r.Submit([]string{"a.zip"}, config.DefaultSettings())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := r.Active(); got != 1 {
		t.Errorf("Active = %d; want 1", got)
	}

	close(fake.release)
	out := wait(t, h)
	if !out.OK() {
		t.Errorf("outcome err = %v", out.Err)
	}
	if got := r.Active(); got != 0 {
		t.Errorf("Active after delivery = %d; want 0", got)
	}
	if _, ok := <-h.Done(); ok {
		t.Error("Done channel not closed after delivery")
	}
}

func TestSubmit_CopiesItems(t *testing.T) {
	t.Parallel()

	fake := &fakeInstaller{release: make(chan struct{})}
	r := New(context.Background(), fake)

	items := []string{"a.zip", "b.zip"}
	h, err := r.Submit(items, config.DefaultSettings())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	items[0] = "mutated.zip"
	close(fake.release)

	out := wait(t, h)
	want := []string{"a.zip", "b.zip"}
	if !reflect.DeepEqual(out.Items, want) {
		t.Errorf("Items = %v; want %v", out.Items, want)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if !reflect.DeepEqual(fake.calls[0], want) {
		t.Errorf("installed = %v; want %v", fake.calls[0], want)
	}
}

func TestSubmit_PassesSteamPath(t *testing.T) {
	t.Parallel()

	fake := &fakeInstaller{}
	r := New(context.Background(), fake)

	settings := config.DefaultSettings()
	settings.SteamPath = "/games/steam"
	h, err := r.Submit([]string{"a.zip"}, settings)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	wait(t, h)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.roots[0] != "/games/steam" {
		t.Errorf("root = %q; want %q", fake.roots[0], "/games/steam")
	}
}

func TestSubmit_FailureOutcome(t *testing.T) {
	t.Parallel()

	fake := &fakeInstaller{err: installer.ErrDownloadFailed}
	var delivered atomic.Int32
	r := New(context.Background(), fake, WithDelivery(func(o Outcome) {
		delivered.Add(1)
		if !errors.Is(o.Err, installer.ErrDownloadFailed) {
			t.Errorf("delivered err = %v; want ErrDownloadFailed", o.Err)
		}
	}))

	h, err := r.Submit([]string{"a.zip"}, config.DefaultSettings())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	out := wait(t, h)
	if out.OK() || out.Result != nil {
		t.Errorf("outcome = %+v; want failure without result", out)
	}
	if got := delivered.Load(); got != 1 {
		t.Errorf("deliveries = %d; want 1", got)
	}
}

func TestSubmit_SerializesBatches(t *testing.T) {
	t.Parallel()

	fake := &fakeInstaller{}
	var delivered atomic.Int32
	r := New(context.Background(), fake, WithDelivery(func(Outcome) { delivered.Add(1) }))

	const n = 8
	ids := make(map[int]bool)
	for i := 0; i < n; i++ {
		h, err := r.Submit([]string{"x.zip"}, config.DefaultSettings())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids[h.ID] = true
	}
	r.Wait()

	if len(ids) != n {
		t.Errorf("distinct ids = %d; want %d", len(ids), n)
	}
	if got := delivered.Load(); got != n {
		t.Errorf("deliveries = %d; want %d", got, n)
	}
	if got := fake.maxSeen.Load(); got != 1 {
		t.Errorf("max concurrent installs = %d; want 1", got)
	}
	if got := r.Active(); got != 0 {
		t.Errorf("Active = %d; want 0", got)
	}
}

func TestSubmit_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeInstaller{}
	r := New(ctx, fake)
	h, err := r.Submit([]string{"a.zip"}, config.DefaultSettings())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out := wait(t, h); !errors.Is(out.Err, context.Canceled) {
		t.Errorf("err = %v; want context.Canceled", out.Err)
	}
}
