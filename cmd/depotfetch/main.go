// ABOUTME: CLI entry point for depotfetch
// ABOUTME: Parses flags, wires catalog/installer/overlay, dispatches to a subcommand or the TUI

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/term"

	"github.com/luulek/depotfetch/internal/batch"
	"github.com/luulek/depotfetch/internal/catalog"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/installer"
	"github.com/luulek/depotfetch/internal/log"
	"github.com/luulek/depotfetch/internal/overlay"
	"github.com/luulek/depotfetch/internal/postinstall"
	"github.com/luulek/depotfetch/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if args.version {
		fmt.Printf("depotfetch %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, args, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run builds the app and dispatches to the selected mode.
func run(ctx context.Context, args cliArgs, stdout io.Writer) error {
	if args.verbose {
		log.SetLevel(log.LevelDebug)
	}

	a, err := newApp(config.Home(args.home))
	if err != nil {
		return err
	}

	if len(args.rest) > 0 {
		if !isSubcommand(args.rest[0]) {
			return fmt.Errorf("unknown subcommand %q: expected list, install, or online-fix", args.rest[0])
		}
		return runCLI(ctx, a, args.rest, stdout)
	}
	return runInteractive(ctx, a)
}

// newApp loads configuration from home and wires the components.
func newApp(home string) (*app, error) {
	if err := config.EnsureDir(home); err != nil {
		return nil, err
	}
	endpoints, err := config.LoadEndpoints(config.EndpointsFile(home))
	if err != nil {
		return nil, fmt.Errorf("loading endpoints: %w", err)
	}
	log.Debug("home %s, index %s", home, endpoints.IndexURL)

	client := catalog.New(endpoints)
	return &app{
		home:      home,
		state:     config.LoadState(config.StateFile(home)),
		catalog:   client,
		installer: installer.New(client, config.CacheDir(home)),
		overlay:   overlay.New(config.OverlayDir(home)),
		post:      postinstall.New(config.NotificationPicture(home)),
	}, nil
}

// runInteractive starts the TUI. Logs go to a file so they do not corrupt
// the screen.
func runInteractive(ctx context.Context, a *app) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stderr.Fd())) {
		return errors.New("interactive mode needs a terminal; use list, install, or online-fix")
	}

	closeLog, err := log.OpenFile(config.LogFile(a.home))
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer func() { _ = closeLog() }()

	sink := tui.NewSink()
	runner := batch.New(ctx, a.installer, batch.WithDelivery(sink.Deliver))
	statePath := config.StateFile(a.home)

	// Saves issued by the TUI can still be in flight after it exits. Once
	// closed, they are dropped so the final save below is the last write.
	var (
		saveMu sync.Mutex
		closed bool
	)
	final, err := tui.Run(ctx, tui.AppDeps{
		Catalog: a.catalog,
		Runner:  runner,
		Overlay: a.overlay,
		Post:    a.post,
		State:   a.state,
		Save: func(st *config.State) error {
			saveMu.Lock()
			defer saveMu.Unlock()
			if closed {
				return nil
			}
			return config.SaveState(statePath, st)
		},
	}, sink)

	if n := runner.Active(); n > 0 {
		fmt.Fprintf(os.Stderr, "waiting for %d batch(es) to finish...\n", n)
	}
	runner.Wait()

	saveMu.Lock()
	defer saveMu.Unlock()
	closed = true
	if n := recordLate(final, sink.Unhandled()); n > 0 {
		log.Info("recorded %d item(s) from batches that finished after exit", n)
	}
	if serr := config.SaveState(statePath, final); serr != nil {
		log.Error("saving state: %v", serr)
		if err == nil {
			err = fmt.Errorf("saving state: %w", serr)
		}
	}
	return err
}

// recordLate appends the items of successful outcomes the TUI never saw to
// the history, returning how many were added.
func recordLate(st *config.State, outcomes []batch.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			log.Warn("batch %d finished after exit: %v", o.ID, o.Err)
			continue
		}
		st.AddHistory(o.Items...)
		n += len(o.Items)
	}
	return n
}
