package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/renderer"
	"github.com/google/subcommands"
)

// quotesCmd refreshes the watch-list once and prints it.
type quotesCmd struct{}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "fetch the latest quotes of the watch-list" }
func (*quotesCmd) Usage() string {
	return `pt quotes

  Fetches the latest quotes of the configured watch-list and prints it.
`
}
func (*quotesCmd) SetFlags(*flag.FlagSet) {}

func (*quotesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, term, err := openTerminal(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if _, err := term.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error updating quotes:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderWatchList(renderer.NewWatchList(term)))
	return subcommands.ExitSuccess
}

// lookupCmd resolves a ticker or a company name.
type lookupCmd struct{}

func (*lookupCmd) Name() string     { return "lookup" }
func (*lookupCmd) Synopsis() string { return "look up an instrument by ticker or company name" }
func (*lookupCmd) Usage() string {
	return `pt lookup <query>

  Looks up an instrument and prints its latest quote.
`
}
func (*lookupCmd) SetFlags(*flag.FlagSet) {}

func (*lookupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a query is required")
		return subcommands.ExitUsageError
	}
	_, term, err := openTerminal(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	in, _, err := term.Search(ctx, strings.Join(f.Args(), " "))
	if errors.Is(err, papertrade.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "NOT FOUND")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderDetail(renderer.NewDetail(in, term.Ledger())))
	return subcommands.ExitSuccess
}

// analyzeCmd prints an analysis of a watch-list instrument.
type analyzeCmd struct {
	refresh bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyze an instrument" }
func (*analyzeCmd) Usage() string {
	return `pt analyze [-u] <symbol>

  Prints a short analysis of an instrument. Symbols outside of the
  watch-list are looked up first.
`
}
func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "u", true, "update quotes before the analysis")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one symbol is required")
		return subcommands.ExitUsageError
	}
	_, term, err := openTerminal(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	in, _, err := term.Search(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if c.refresh {
		if _, err := term.Refresh(ctx); err != nil {
			// analysis still makes sense on the last known quote.
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
	}
	a, err := term.Analyze(ctx, in.Symbol)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderAnalysis(in.Symbol, a))
	return subcommands.ExitSuccess
}

// newsCmd prints the latest market headlines.
type newsCmd struct{}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "print the latest market headlines" }
func (*newsCmd) Usage() string {
	return `pt news

  Prints the top financial headlines with their sources.
`
}
func (*newsCmd) SetFlags(*flag.FlagSet) {}

func (*newsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, term, err := openTerminal(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	n, err := term.News(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderNews(n))
	return subcommands.ExitSuccess
}
