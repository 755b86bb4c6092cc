package papertrade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrInFlight is returned when the same kind of request is already
	// running. The request is dropped, not queued.
	ErrInFlight = errors.New("request already in flight")
	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrUnknownSymbol is returned for a symbol missing from the watch-list.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrRefreshFailed is returned when quotes could not be fetched. The
	// watch-list keeps its last known prices.
	ErrRefreshFailed = errors.New("quote refresh failed")
)

// Placeholders returned when a commentary cannot be fetched.
const (
	AnalysisFailed = "CONNECTION ERROR. ANALYSIS FAILED. RETRY LATER."
	NewsFailed     = "NETWORK ERROR. UNABLE TO RETRIEVE INTEL."
)

// inflight drops concurrent calls of the same kind.
type inflight struct{ busy atomic.Bool }

func (g *inflight) acquire() bool { return g.busy.CompareAndSwap(false, true) }
func (g *inflight) release()      { g.busy.Store(false) }

// RefreshStatus describes the outcome of the last quote refresh.
type RefreshStatus struct {
	LastUpdated time.Time // time of the last successful refresh, zero if none.
	Failed      bool      // the last refresh failed.
	Updated     int       // instruments updated by the last successful refresh.
}

func (s RefreshStatus) String() string {
	switch {
	case s.Failed:
		return "UPDATE FAILED"
	case s.LastUpdated.IsZero():
		return "INITIALIZING..."
	default:
		return s.LastUpdated.Format(time.TimeOnly)
	}
}

// Terminal coordinates the watch-list, the ledger and the external providers.
//
// Provider results are merged into the Registry, and orders are executed by
// the Ledger at the Registry's current price. Failures of providers are never
// fatal: they degrade to the last known state or to a placeholder.
type Terminal struct {
	registry *Registry
	ledger   *Ledger

	quotes  QuoteFetcher
	analyst Analyst
	wire    NewsWire
	finder  Finder

	now func() time.Time

	refreshing, searching, analyzing, reading inflight

	mu     sync.Mutex
	status RefreshStatus
}

// NewTerminal creates a Terminal served by 'p'.
func NewTerminal(registry *Registry, ledger *Ledger, p Provider) *Terminal {
	return &Terminal{
		registry: registry,
		ledger:   ledger,
		quotes:   p,
		analyst:  p,
		wire:     p,
		finder:   p,
		now:      time.Now,
	}
}

// WithQuotes replaces the source of quotes.
func (t *Terminal) WithQuotes(q QuoteFetcher) *Terminal {
	t.quotes = q
	return t
}

func (t *Terminal) Registry() *Registry { return t.registry }
func (t *Terminal) Ledger() *Ledger     { return t.ledger }

// Status returns the outcome of the last refresh.
func (t *Terminal) Status() RefreshStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Refreshing reports whether a refresh is running.
func (t *Terminal) Refreshing() bool { return t.refreshing.busy.Load() }

// Refresh fetches quotes for the whole watch-list and merges them.
//
// On failure the watch-list is left untouched and the status is marked as
// failed.
func (t *Terminal) Refresh(ctx context.Context) (RefreshStatus, error) {
	if !t.refreshing.acquire() {
		return t.Status(), ErrInFlight
	}
	defer t.refreshing.release()

	symbols := t.registry.Symbols()
	if len(symbols) == 0 {
		return t.Status(), nil
	}
	quotes, err := t.quotes.FetchQuotes(ctx, symbols)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("failed to fetch quotes for %s: %v", strings.Join(symbols, ","), err)
		t.status.Failed = true
		return t.status, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	n := t.registry.MergeQuotes(quotes)
	t.status = RefreshStatus{LastUpdated: t.now(), Updated: n}
	return t.status, nil
}

// Watch refreshes the quotes every 'interval' until ctx is done. Ticks that
// occur while a refresh is running are skipped.
func (t *Terminal) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := t.Refresh(ctx); err != nil && !errors.Is(err, ErrInFlight) {
				log.Printf("watch: %v", err)
			}
		}
	}
}

// Search returns the watch-list instrument matching 'query', looking it up
// and adding it at the front of the watch-list when it is not there yet.
//
// The lookup is only attempted when no instrument matches the query
// case-insensitively. Any lookup failure is reported as ErrNotFound.
func (t *Terminal) Search(ctx context.Context, query string) (in Instrument, added bool, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Instrument{}, false, ErrEmptyQuery
	}
	if existing, ok := t.registry.ByIdentifier(query); ok {
		return existing, false, nil
	}

	if !t.searching.acquire() {
		return Instrument{}, false, ErrInFlight
	}
	defer t.searching.release()

	found, err := t.finder.Lookup(ctx, query)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("lookup %q failed: %v", query, err)
		}
		return Instrument{}, false, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	if CanonicalSymbol(found.Symbol) == "" || found.Price.IsNegative() {
		log.Printf("lookup %q returned an invalid instrument: %+v", query, found)
		return Instrument{}, false, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	// The history is always generated locally.
	found.History = nil
	in, added = t.registry.AddIfAbsent(found)
	return in, added, nil
}

// Analyze asks the analyst about the instrument 'symbol'. A failing analyst
// results in a neutral placeholder.
func (t *Terminal) Analyze(ctx context.Context, symbol string) (Analysis, error) {
	in, ok := t.registry.ByIdentifier(symbol)
	if !ok {
		return Analysis{}, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	if !t.analyzing.acquire() {
		return Analysis{}, ErrInFlight
	}
	defer t.analyzing.release()

	a, err := t.analyst.Analyze(ctx, in)
	if err != nil {
		log.Printf("analysis of %s failed: %v", in.Symbol, err)
		return Analysis{Summary: AnalysisFailed, Sentiment: Neutral}, nil
	}
	return a, nil
}

// News returns the latest market headlines. A failing news wire results in
// a placeholder.
func (t *Terminal) News(ctx context.Context) (News, error) {
	if !t.reading.acquire() {
		return News{}, ErrInFlight
	}
	defer t.reading.release()

	n, err := t.wire.News(ctx)
	if err != nil {
		log.Printf("news fetch failed: %v", err)
		return News{Text: NewsFailed}, nil
	}
	return n, nil
}

// price returns the current price of a watch-list instrument, for trading.
func (t *Terminal) price(symbol string) (Money, error) {
	price, ok := t.registry.Price(symbol)
	if !ok {
		return Money{}, fmt.Errorf("%w: %w: %q", ErrRejected, ErrUnknownSymbol, symbol)
	}
	return price, nil
}

// Buy buys 'quantity' units of 'symbol' at its current price.
func (t *Terminal) Buy(symbol string, quantity Quantity) (Fill, error) {
	price, err := t.price(symbol)
	if err != nil {
		return Fill{}, err
	}
	return t.ledger.Buy(symbol, quantity, price)
}

// Sell sells 'quantity' units of 'symbol' at its current price.
func (t *Terminal) Sell(symbol string, quantity Quantity) (Fill, error) {
	price, err := t.price(symbol)
	if err != nil {
		return Fill{}, err
	}
	return t.ledger.Sell(symbol, quantity, price)
}

// Holding returns the ledger valued at the watch-list prices.
func (t *Terminal) Holding() *HoldingReport {
	return NewHoldingReport(t.ledger, t.registry, t.now())
}
