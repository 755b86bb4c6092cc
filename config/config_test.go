package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/papertrade"
)

// clearEnv hides the overrides of the environment running the tests.
func clearEnv(t *testing.T) {
	for _, key := range []string{"PT_CASH", "PT_CURRENCY", "PT_MODEL", "PT_REFRESH_INTERVAL", "PT_QUOTES_SOURCE", "PT_QUOTES_URL", "GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papertrade.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
	if !cfg.OpeningCash().Equal(papertrade.M(10000, "USD")) {
		t.Errorf("OpeningCash() = %v, want $10,000.00", cfg.OpeningCash())
	}
	ins := cfg.Instruments()
	if len(ins) != 5 || ins[0].Symbol != "SPY" || ins[4].Symbol != "BTC" {
		t.Errorf("Instruments() = %v", ins)
	}
	if !ins[2].Change.Equal(papertrade.M(-0.8, "USD")) {
		t.Errorf("DIA change = %v", ins[2].Change)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
cash = 2500
model = "gemini-test"
refresh_interval = "30s"

[quotes]
source = "json"
url = "https://example.com/q/{symbol}"
price = "$.last"

[[instrument]]
symbol = "aapl"
name = "APPLE INC"
price = 190.5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if cfg.Cash != 2500 || cfg.Model != "gemini-test" || cfg.Interval() != 30*time.Second || cfg.Currency != "USD" {
		t.Errorf("Load() = %+v", cfg)
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0].Symbol != "aapl" {
		t.Errorf("Load() watch-list = %+v, want the file's one", cfg.Watchlist)
	}
	if src := cfg.JSONSource(); src.URL != "https://example.com/q/{symbol}" || src.Price != "$.last" || src.Concurrency == 0 {
		t.Errorf("JSONSource() = %+v", src)
	}
}

func TestLoad_KeepsDefaultWatchlist(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, `currency = "EUR"`))
	if err != nil {
		t.Fatalf("Load() unexpected error %v", err)
	}
	if len(cfg.Watchlist) != len(Defaults().Watchlist) {
		t.Errorf("Load() watch-list has %d entries, want the defaults", len(cfg.Watchlist))
	}
	if got := cfg.Instruments()[0].Price.Currency(); got != "EUR" {
		t.Errorf("instrument currency = %q, want EUR", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PT_CASH", "500.25")
	t.Setenv("PT_REFRESH_INTERVAL", "0s")
	t.Setenv("PT_QUOTES_SOURCE", "json")
	t.Setenv("PT_QUOTES_URL", "https://example.com/{symbol}")
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("GEMINI_API_KEY", "gemini")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error %v", err)
	}
	if cfg.Cash != 500.25 || cfg.Interval() != 0 || cfg.Quotes.Source != SourceJSON || cfg.Quotes.URL != "https://example.com/{symbol}" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.APIKey != "gemini" {
		t.Errorf("APIKey = %q, want GEMINI_API_KEY to win", cfg.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) expected an error")
	}
	if _, err := Load(writeFile(t, `refresh_interval = "soon"`)); err == nil {
		t.Error("Load(bad duration) expected an error")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	// no .env at all.
	if _, err := Load(""); err != nil {
		t.Fatalf("Load() without .env unexpected error %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("# nothing to set\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err != nil {
		t.Fatalf("Load() with a valid .env unexpected error %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PT-CASH=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Error("Load() with a malformed .env expected an error")
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"negative cash", func(c *Config) { c.Cash = -1 }, "cash"},
		{"bad currency", func(c *Config) { c.Currency = "usd" }, "currency"},
		{"unknown source", func(c *Config) { c.Quotes.Source = "ftp" }, "unknown source"},
		{"json without url", func(c *Config) { c.Quotes.Source = SourceJSON }, "quotes:"},
		{"duplicated symbol", func(c *Config) { c.Watchlist = append(c.Watchlist, InstrumentConfig{Symbol: "spy"}) }, "SPY: duplicated"},
		{"empty symbol", func(c *Config) { c.Watchlist = append(c.Watchlist, InstrumentConfig{}) }, "symbol must not be empty"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want an error containing %q", err, tc.want)
			}
		})
	}
}
