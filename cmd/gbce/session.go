package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/subcommands"
)

type sessionCmd struct {
	sample bool
	file   string
}

func (*sessionCmd) Name() string { return "session" }
func (*sessionCmd) Synopsis() string {
	return "read exchange commands line by line and print one JSON response per command"
}
func (*sessionCmd) Usage() string {
	return `gbce session [-sample] [-f <script>]

  Reads commands from stdin, or from a script file with -f, until EOF.
  Each command writes one JSON object to stdout. Type 'help' for the
  list of commands. Lines starting with '#' are ignored.
`
}

func (c *sessionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.sample, "sample", false, "List the GBCE sample stocks before reading commands (also GBCE_SAMPLE).")
	f.StringVar(&c.file, "f", "", "Read commands from this file instead of stdin.")
}

func (c *sessionCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.sample || a.cfg.Sample {
		stocks, err := a.svc.ListSample()
		if err != nil {
			a.logger.Error("failed to list sample stocks", slog.String("error", err.Error()))
			return subcommands.ExitFailure
		}
		a.logger.Info("sample stocks listed", slog.Int("count", len(stocks)))
	}

	var in io.Reader = os.Stdin
	if c.file != "" {
		f, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		in = f
	}

	a.logger.Info("session started", slog.String("window", a.cfg.VWAPWindow.String()))
	if err := a.router.Serve(ctx, in, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Info("session interrupted")
			return subcommands.ExitSuccess
		}
		a.logger.Error("session failed", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}
	a.logger.Info("session ended")
	return subcommands.ExitSuccess
}
