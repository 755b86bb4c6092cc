// Package config holds the settings of the paper trading terminal.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/gemini"
	"github.com/etnz/papertrade/jsonquote"
	"github.com/shopspring/decimal"
)

// Quote sources.
const (
	SourceGemini = "gemini"
	SourceJSON   = "json"
)

// Config is the root configuration.
type Config struct {
	// Cash is the opening cash balance of the session.
	Cash float64 `toml:"cash"`
	// Currency of the cash and of every price.
	Currency string `toml:"currency"`
	// Model is the Gemini model name.
	Model string `toml:"model"`
	// APIKey is only read from the environment.
	APIKey string `toml:"-"`
	// RefreshInterval between background quote refreshes, 0 disables them.
	RefreshInterval duration `toml:"refresh_interval"`

	Quotes QuotesConfig `toml:"quotes"`

	// Watchlist is the initial watch-list, in display order.
	Watchlist []InstrumentConfig `toml:"instrument"`
}

// QuotesConfig selects where quotes come from.
type QuotesConfig struct {
	Source        string `toml:"source"` // "gemini" or "json"
	URL           string `toml:"url"`
	Price         string `toml:"price"`
	Change        string `toml:"change"`
	ChangePercent string `toml:"change_percent"`
	Volume        string `toml:"volume"`
	Concurrency   int    `toml:"concurrency"`
}

// InstrumentConfig is a watch-list entry with its last known quote.
type InstrumentConfig struct {
	Symbol        string  `toml:"symbol"`
	Name          string  `toml:"name"`
	Description   string  `toml:"description"`
	Price         float64 `toml:"price"`
	Change        float64 `toml:"change"`
	ChangePercent float64 `toml:"change_percent"`
	Volume        string  `toml:"volume"`
}

// duration wraps time.Duration so TOML can decode strings like "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Cash:            10000,
		Currency:        "USD",
		Model:           gemini.DefaultModel,
		RefreshInterval: duration{5 * time.Minute},
		Quotes:          QuotesConfig{Source: SourceGemini, Concurrency: jsonquote.DefaultConcurrency},
		Watchlist: []InstrumentConfig{
			{Symbol: "SPY", Name: "S&P 500 ETF", Price: 512.00, Change: 1.50, ChangePercent: 0.29, Volume: "85.2M", Description: "Standard & Poor's 500 Index ETF."},
			{Symbol: "QQQ", Name: "NASDAQ 100 ETF", Price: 440.50, Change: 2.10, ChangePercent: 0.48, Volume: "42.1M", Description: "Nasdaq-100 Index Tracking Stock."},
			{Symbol: "DIA", Name: "DOW JONES ETF", Price: 390.20, Change: -0.80, ChangePercent: -0.20, Volume: "12.4M", Description: "Dow Jones Industrial Average ETF."},
			{Symbol: "NVDA", Name: "NVIDIA CORP", Price: 875.24, Change: 12.45, ChangePercent: 1.44, Volume: "45.2M", Description: "Technology company known for GPUs."},
			{Symbol: "BTC", Name: "BITCOIN USD", Price: 69420.00, Change: 1200.50, ChangePercent: 1.76, Volume: "28.4B", Description: "Decentralized digital currency."},
		},
	}
}

// Interval is the background refresh period.
func (c *Config) Interval() time.Duration { return c.RefreshInterval.Duration }

// OpeningCash is the opening cash balance as Money.
func (c *Config) OpeningCash() papertrade.Money {
	return papertrade.M(decimal.NewFromFloat(c.Cash), c.Currency)
}

// Instruments returns the initial watch-list.
func (c *Config) Instruments() []papertrade.Instrument {
	ins := make([]papertrade.Instrument, 0, len(c.Watchlist))
	for _, w := range c.Watchlist {
		ins = append(ins, papertrade.Instrument{
			Symbol:        w.Symbol,
			Name:          w.Name,
			Description:   w.Description,
			Price:         papertrade.M(w.Price, c.Currency),
			Change:        papertrade.M(w.Change, c.Currency),
			ChangePercent: papertrade.Percent(w.ChangePercent),
			Volume:        w.Volume,
		})
	}
	return ins
}

// JSONSource returns the jsonquote source described by the quotes section.
func (c *Config) JSONSource() *jsonquote.Source {
	return &jsonquote.Source{
		URL:           c.Quotes.URL,
		Price:         c.Quotes.Price,
		Change:        c.Quotes.Change,
		ChangePercent: c.Quotes.ChangePercent,
		Volume:        c.Quotes.Volume,
		Currency:      c.Currency,
		Concurrency:   c.Quotes.Concurrency,
	}
}

// Validate checks the configuration for obvious mistakes and returns an
// error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.Cash < 0 {
		errs = append(errs, fmt.Sprintf("cash must not be negative, got %v", c.Cash))
	}
	if len(c.Currency) != 3 || strings.ToUpper(c.Currency) != c.Currency {
		errs = append(errs, fmt.Sprintf("currency must be an uppercase ISO 4217 code, got %q", c.Currency))
	}
	if c.RefreshInterval.Duration < 0 {
		errs = append(errs, "refresh_interval must not be negative")
	}

	switch c.Quotes.Source {
	case SourceGemini:
	case SourceJSON:
		if err := c.JSONSource().Validate(); err != nil {
			errs = append(errs, "quotes: "+err.Error())
		}
	default:
		errs = append(errs, fmt.Sprintf("quotes: unknown source %q (valid: gemini, json)", c.Quotes.Source))
	}

	seen := make(map[string]bool)
	for i, w := range c.Watchlist {
		symbol := papertrade.CanonicalSymbol(w.Symbol)
		switch {
		case symbol == "":
			errs = append(errs, fmt.Sprintf("instrument #%d: symbol must not be empty", i+1))
		case seen[symbol]:
			errs = append(errs, fmt.Sprintf("instrument %s: duplicated", symbol))
		case w.Price < 0:
			errs = append(errs, fmt.Sprintf("instrument %s: price must not be negative", symbol))
		}
		seen[symbol] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
