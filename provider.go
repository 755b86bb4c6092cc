package papertrade

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by a Finder when no instrument matches the query.
	ErrNotFound = errors.New("instrument not found")
	// ErrOffline is returned by providers that cannot reach their service.
	ErrOffline = errors.New("provider offline")
)

// Sentiment is the direction predicted by an analysis.
type Sentiment string

const (
	Bullish Sentiment = "BULLISH"
	Bearish Sentiment = "BEARISH"
	Neutral Sentiment = "NEUTRAL"
)

// ParseSentiment parses a sentiment, ignoring case.
func ParseSentiment(s string) (Sentiment, error) {
	switch v := Sentiment(strings.ToUpper(strings.TrimSpace(s))); v {
	case Bullish, Bearish, Neutral:
		return v, nil
	default:
		return "", fmt.Errorf("unknown sentiment: %q", s)
	}
}

// Analysis is a free-text commentary about an instrument.
type Analysis struct {
	Summary   string
	Sentiment Sentiment
}

// Source is a reference backing a piece of news.
type Source struct {
	Title string
	URI   string
}

// News is a digest of market headlines.
type News struct {
	Text    string
	Sources []Source
}

// QuoteFetcher fetches the latest quotes of a set of symbols.
//
// The result may miss some symbols, and keys may differ in case from the
// requested symbols.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// Analyst comments on an instrument.
type Analyst interface {
	Analyze(ctx context.Context, in Instrument) (Analysis, error)
}

// NewsWire fetches market headlines.
type NewsWire interface {
	News(ctx context.Context) (News, error)
}

// Finder resolves a free-text query (ticker or company name) into an
// instrument, or ErrNotFound.
type Finder interface {
	Lookup(ctx context.Context, query string) (Instrument, error)
}

// Provider is a data source able to serve every external need of the Terminal.
type Provider interface {
	QuoteFetcher
	Analyst
	NewsWire
	Finder
}

// Offline is the Provider used when no service is configured.
type Offline struct{}

func (Offline) FetchQuotes(context.Context, []string) (map[string]Quote, error) {
	return nil, ErrOffline
}

func (Offline) Lookup(context.Context, string) (Instrument, error) {
	return Instrument{}, ErrOffline
}

func (Offline) Analyze(context.Context, Instrument) (Analysis, error) {
	return Analysis{Summary: "API KEY MISSING. UNABLE TO ANALYZE. SYSTEM OFFLINE.", Sentiment: Neutral}, nil
}

func (Offline) News(context.Context) (News, error) {
	return News{Text: "SYSTEM OFFLINE. CONNECT API KEY."}, nil
}
