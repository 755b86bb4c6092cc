package papertrade

import (
	"log"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
)

// PriceSource provides the current price of a symbol.
type PriceSource interface {
	Price(symbol string) (Money, bool)
}

// Prices is a PriceSource backed by a plain map keyed by canonical symbol.
type Prices map[string]Money

// Price implements PriceSource.
func (p Prices) Price(symbol string) (Money, bool) {
	m, ok := p[CanonicalSymbol(symbol)]
	return m, ok
}

// Registry holds the watch-list: instruments in display order, at most one
// per canonical symbol.
//
// Instruments are never removed. A Registry is safe for concurrent use, each
// operation being applied atomically.
type Registry struct {
	mu      sync.RWMutex
	symbols []string               // display order, most recent lookup first.
	index   map[string]*Instrument // index instruments by canonical symbol
	rng     *rand.Rand
}

// NewRegistry returns a registry seeded with 'instruments' in that order.
func NewRegistry(instruments ...Instrument) *Registry {
	r := &Registry{
		index: make(map[string]*Instrument),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, in := range instruments {
		r.append(in)
	}
	return r
}

// canonical normalizes the symbol and makes sure the instrument has a history.
func (r *Registry) canonical(in Instrument) *Instrument {
	in = in.clone()
	in.Symbol = CanonicalSymbol(in.Symbol)
	if len(in.History) == 0 {
		in.History = GenerateHistory(r.rng, in.Price)
	}
	return &in
}

// append adds at the end, used for seeding only.
func (r *Registry) append(in Instrument) {
	sym := CanonicalSymbol(in.Symbol)
	if sym == "" {
		return
	}
	if _, exists := r.index[sym]; exists {
		return
	}
	r.index[sym] = r.canonical(in)
	r.symbols = append(r.symbols, sym)
}

// AddIfAbsent inserts 'in' at the front of the watch-list unless an instrument
// with the same canonical symbol already exists, in which case the existing
// one is returned untouched.
//
// An instrument without history gets a freshly generated one. An instrument
// with an empty symbol is never inserted and the zero Instrument is returned.
func (r *Registry) AddIfAbsent(in Instrument) (Instrument, bool) {
	sym := CanonicalSymbol(in.Symbol)
	if sym == "" {
		return Instrument{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.index[sym]; ok {
		return existing.clone(), false
	}
	added := r.canonical(in)
	r.index[sym] = added
	r.symbols = append([]string{sym}, r.symbols...)
	return added.clone(), true
}

// ByIdentifier returns the instrument for a symbol, compared case-insensitively.
func (r *Registry) ByIdentifier(symbol string) (Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.index[CanonicalSymbol(symbol)]
	if !ok {
		return Instrument{}, false
	}
	return in.clone(), true
}

// Price implements PriceSource with the latest known price.
func (r *Registry) Price(symbol string) (Money, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.index[CanonicalSymbol(symbol)]
	if !ok {
		return Money{}, false
	}
	return in.Price, true
}

// Len returns the number of instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.symbols)
}

// Symbols returns the canonical symbols in display order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.symbols...)
}

// All returns a copy of every instrument in display order.
func (r *Registry) All() []Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Instrument, 0, len(r.symbols))
	for _, sym := range r.symbols {
		all = append(all, r.index[sym].clone())
	}
	return all
}

// MergeQuotes applies freshly fetched quotes to the watch-list and returns
// the number of instruments updated.
//
// Quotes are matched by symbol. A key equal to the canonical symbol wins
// over a key that only matches case-insensitively; among such keys the first
// in sorted order wins. For a matching quote the
// price, change and change percent are replaced, the volume only when the
// quote has one, and the history is regenerated. Instruments without a quote,
// or with a malformed one, are left unchanged.
func (r *Registry) MergeQuotes(quotes map[string]Quote) int {
	if len(quotes) == 0 {
		return 0
	}
	byCanonical := make(map[string]Quote, len(quotes))
	for _, key := range slices.Sorted(maps.Keys(quotes)) {
		sym := CanonicalSymbol(key)
		if _, exact := quotes[sym]; exact && key != sym {
			continue
		}
		if _, seen := byCanonical[sym]; seen {
			continue
		}
		byCanonical[sym] = quotes[key]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int
	for _, sym := range r.symbols {
		q, ok := byCanonical[sym]
		if !ok {
			continue
		}
		if err := q.Validate(); err != nil {
			log.Printf("skipping quote for %s: %v", sym, err)
			continue
		}
		r.index[sym].apply(q, GenerateHistory(r.rng, q.Price))
		updated++
	}
	return updated
}
