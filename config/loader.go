package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads the TOML file at 'path' on top of the built-in defaults, then
// applies the environment overrides. An empty path skips the file.
//
// A .env file in the working directory is loaded first, when present. A
// malformed .env file is an error.
// The returned Config has not been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		// a file that declares a watch-list replaces the default one.
		cfg.Watchlist = nil
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, err
		}
		if !md.IsDefined("instrument") {
			cfg.Watchlist = Defaults().Watchlist
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setFloat64(&cfg.Cash, "PT_CASH")
	setStr(&cfg.Currency, "PT_CURRENCY")
	setStr(&cfg.Model, "PT_MODEL")
	setDuration(&cfg.RefreshInterval, "PT_REFRESH_INTERVAL")
	setStr(&cfg.Quotes.Source, "PT_QUOTES_SOURCE")
	setStr(&cfg.Quotes.URL, "PT_QUOTES_URL")

	setStr(&cfg.APIKey, "GOOGLE_API_KEY")
	setStr(&cfg.APIKey, "GEMINI_API_KEY")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
