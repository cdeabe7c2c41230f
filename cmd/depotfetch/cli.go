// ABOUTME: Non-interactive subcommands: list, install, online-fix
// ABOUTME: Same operations as the TUI, reported on stdout with tabwriter tables

package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/luulek/depotfetch/internal/batch"
	"github.com/luulek/depotfetch/internal/catalog"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/installer"
	"github.com/luulek/depotfetch/internal/log"
	"github.com/luulek/depotfetch/internal/overlay"
)

// isSubcommand reports whether name is handled by runCLI.
func isSubcommand(name string) bool {
	switch name {
	case "list", "install", "online-fix":
		return true
	}
	return false
}

// runCLI dispatches a subcommand. args contains the subcommand followed by
// its arguments.
func runCLI(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: depotfetch <list|install|online-fix> [args...]")
	}

	subcmd, rest := args[0], args[1:]
	switch subcmd {
	case "list":
		return runList(ctx, a, rest, stdout)
	case "install":
		return runInstall(ctx, a, rest, stdout)
	case "online-fix":
		return runOnlineFix(a, rest, stdout)
	default:
		return fmt.Errorf("unknown subcommand %q: expected list, install, or online-fix", subcmd)
	}
}

func runList(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("list takes at most one query")
	}

	names, err := a.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}

	shown := names
	if len(args) == 1 {
		shown = catalog.Filter(names, args[0])
		if len(shown) == 0 {
			suggestions := catalog.Suggest(names, args[0])
			if len(suggestions) == 0 {
				fmt.Fprintf(stdout, "No archives match %q.\n", args[0])
				return nil
			}
			fmt.Fprintf(stdout, "No archives match %q. Did you mean:\n", args[0])
			shown = suggestions
		}
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAPP\tINSTALLED")
	for _, n := range shown {
		fmt.Fprintf(w, "%s\t%s\t%s\n", n, installer.ScratchName(n), yesNo(a.installed(n)))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Found %d Manifest & Lua's.\n", len(names))
	return nil
}

func runInstall(ctx context.Context, a *app, items []string, stdout io.Writer) error {
	runner := batch.New(ctx, a.installer)
	h, err := runner.Submit(items, a.state.Settings)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}

	out := <-h.Done()
	if !out.OK() {
		return fmt.Errorf("%s (%w)", installer.Message(out.Err), out.Err)
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tSTATUS")
	for _, item := range out.Result.Installed {
		fmt.Fprintf(w, "%s\tinstalled\n", item)
	}
	for _, s := range out.Result.Skipped {
		fmt.Fprintf(w, "%s\tskipped: %v\n", s.Src, s.Err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, installer.SuccessMessage(out.Result))

	a.state.AddHistory(out.Items...)
	if err := a.saveState(); err != nil {
		log.Warn("saving state: %v", err)
	}
	a.post.Run(ctx, out.Settings)
	return nil
}

func runOnlineFix(a *app, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("online-fix requires exactly one game directory")
	}

	res, err := a.overlay.Apply(args[0])
	if err != nil {
		return fmt.Errorf("%s (%w)", overlay.Message(err), err)
	}
	for _, s := range res.Skipped {
		fmt.Fprintln(stdout, s.String())
	}
	fmt.Fprintf(stdout, "%s\ndata dir: %s, %d entries copied\n", overlay.SuccessMessage, res.DataDir, res.Copied)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// app bundles the components shared by the TUI and the subcommands.
type app struct {
	home      string
	state     *config.State
	catalog   *catalog.Client
	installer *installer.Installer
	overlay   *overlay.Applier
	post      postRunner
}

type postRunner interface {
	Run(ctx context.Context, settings config.Settings)
}

func (a *app) installed(item string) bool {
	return slices.Contains(a.state.Added, item)
}

func (a *app) saveState() error {
	return config.SaveState(config.StateFile(a.home), a.state)
}
