// Package main is the entry point for the cmdpalette command.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dshills/cmdpalette/internal/app"
	"github.com/dshills/cmdpalette/internal/renderer/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitCanceled = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cliOptions struct {
	app.Options
	filter      string
	oneShot     bool
	logFile     string
	color       string
	showVersion bool
	showHelp    bool
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, flagSet, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if opts.showHelp {
		printHelp(stderr, flagSet)
		return exitOK
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "cmdpalette %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	switch opts.color {
	case "always":
		opts.Color = true
	case "never":
		opts.Color = false
	case "auto":
		opts.Color = view.IsTerminal(stdout)
	}

	// The interactive view owns the terminal, so its logs never go to stderr.
	opts.LogOutput = stderr
	if !opts.oneShot {
		opts.LogOutput = io.Discard
	}
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "Error: opening log file: %v\n", err)
			return exitError
		}
		defer f.Close()
		opts.LogOutput = f
	}

	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return exitError
	}
	defer application.Shutdown()

	if opts.oneShot {
		if err := application.RunOnce(opts.filter, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if _, ok := <-signals; ok {
			application.Shutdown()
		}
	}()

	id, err := application.Run()
	switch {
	case errors.Is(err, app.ErrCanceled), errors.Is(err, app.ErrQuit):
		return exitCanceled
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	fmt.Fprintln(stdout, id)
	return exitOK
}

func parseFlags(args []string) (*cliOptions, *pflag.FlagSet, error) {
	var opts cliOptions

	flagSet := pflag.NewFlagSet("cmdpalette", pflag.ContinueOnError)
	// Errors are reported by run.
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() {}

	flagSet.StringVarP(&opts.ConfigPath, "config", "c", "", "palette file (.toml, .yaml, .json or .jsonc)")
	flagSet.StringVarP(&opts.filter, "filter", "f", "", "print the commands matching the filter and exit")
	flagSet.IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of printed commands (0 for all)")
	flagSet.BoolVarP(&opts.Watch, "watch", "w", false, "reload the commands when the palette file changes")
	flagSet.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the palette file")
	flagSet.StringVar(&opts.logFile, "log-file", "", "append logs to this file")
	flagSet.StringVar(&opts.color, "color", "auto", "highlight matches in printed output (auto, always, never)")
	flagSet.BoolVarP(&opts.showVersion, "version", "v", false, "show version information")
	flagSet.BoolVarP(&opts.showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.showHelp = true
			return &opts, flagSet, nil
		}
		return nil, nil, err
	}

	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	opts.oneShot = flagSet.Changed("filter")

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}
	switch opts.color {
	case "auto", "always", "never":
	default:
		return nil, nil, fmt.Errorf("invalid color mode %q (must be auto, always, or never)", opts.color)
	}
	if opts.Limit < 0 {
		return nil, nil, fmt.Errorf("invalid limit %d", opts.Limit)
	}

	return &opts, flagSet, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `cmdpalette - fuzzy command palette

Shows the commands of a palette file, filtered as you type. The accepted
command ID is printed to stdout. With --filter the matching commands are
printed instead, best match first, one per line:

  <name> TAB <id> [TAB <keybinding>]

Usage:
  cmdpalette [flags]

Flags:
%s
Examples:
  cmdpalette -c palette.toml             Open the palette
  cmdpalette -c settings.json -f "ntab"  Print the matches for "ntab"
  cmdpalette -c palette.yaml -w          Reload on file changes

Exit status is 0 on success, 1 on error and 130 when the palette is dismissed.
`, flagSet.FlagUsages())
}
