// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --home, --verbose, --version; remaining args select a subcommand

package main

import (
	"flag"
	"fmt"
	"io"
)

type cliArgs struct {
	home    string
	verbose bool
	version bool
	rest    []string
}

const usageText = `Usage:
  depotfetch [flags]                      interactive catalog browser
  depotfetch [flags] list [query]         list catalog archives
  depotfetch [flags] install <item.zip>…  install archives into the Steam location
  depotfetch [flags] online-fix <dir>     apply the Online-Fix overlay to a Unity game

Flags:
`

func parseFlags(argv []string, stderr io.Writer) (cliArgs, error) {
	var args cliArgs

	fs := flag.NewFlagSet("depotfetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&args.home, "home", "", "Data directory holding app_state.json and Files/ (default $DEPOTFETCH_HOME or the working directory)")
	fs.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&args.version, "version", false, "Show version and exit")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(argv); err != nil {
		return args, err
	}
	args.rest = fs.Args()
	return args, nil
}
