// Package cmd implements the CLI application of the paper trading terminal.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/config"
	"github.com/etnz/papertrade/gemini"
	"github.com/google/subcommands"
)

// Commands lists every subcommand. A main package registers them all.
var Commands = []subcommands.Command{
	&shellCmd{},
	&quotesCmd{},
	&lookupCmd{},
	&analyzeCmd{},
	&newsCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to the TOML configuration file (built-in defaults when empty)")

// loadConfig loads and validates the application configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load config %q: %w", *configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProvider returns the Gemini provider, or the offline one when no API key is configured.
func newProvider(ctx context.Context, cfg *config.Config) (papertrade.Provider, error) {
	if cfg.APIKey == "" {
		log.Println("warning, no GEMINI_API_KEY set, running offline")
		return papertrade.Offline{}, nil
	}
	return gemini.New(ctx, cfg.APIKey, cfg.Model, cfg.Currency)
}

// newTerminal creates the terminal described by 'cfg', with a fresh ledger.
func newTerminal(cfg *config.Config, p papertrade.Provider) *papertrade.Terminal {
	t := papertrade.NewTerminal(
		papertrade.NewRegistry(cfg.Instruments()...),
		papertrade.NewLedger(cfg.OpeningCash()),
		p,
	)
	if cfg.Quotes.Source == config.SourceJSON {
		t.WithQuotes(cfg.JSONSource())
	}
	return t
}

// openTerminal loads the configuration and creates the terminal.
func openTerminal(ctx context.Context) (*config.Config, *papertrade.Terminal, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newTerminal(cfg, p), nil
}
