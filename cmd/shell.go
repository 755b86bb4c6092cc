package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
)

// shellCmd starts an interactive trading session.
type shellCmd struct {
	noRefresh bool
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "start an interactive paper trading session" }
func (*shellCmd) Usage() string {
	return `pt shell [-no-refresh] [<command>]

  Starts an interactive session: browse the watch-list, look up symbols,
  ask for analysis and news, and trade with virtual cash.

  Quotes are refreshed at start and then every 'refresh_interval'.
  An optional command is executed first, as if it was typed.
  On a terminal, the line can be edited, command names complete with Tab
  and the history is kept across sessions.
`
}

func (c *shellCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noRefresh, "no-refresh", false, "do not fetch quotes at start")
}

func (c *shellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, term, err := openTerminal(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Interval() > 0 {
		go term.Watch(ctx, cfg.Interval())
	}

	var prompts []string
	if !c.noRefresh {
		prompts = append(prompts, "refresh")
	}
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}

	lr := NewLineReader(os.Stdout, os.Stdin)
	if isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		t := newTermReader()
		defer t.Close()
		lr = t
	}

	if err := NewSession(term, os.Stdout).Run(ctx, lr, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Session failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
