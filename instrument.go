package papertrade

import (
	"errors"
	"slices"
	"strings"
)

// Instrument is a tradable symbol of the watch-list with its latest quote.
type Instrument struct {
	Symbol        string // canonical, see CanonicalSymbol
	Name          string
	Description   string
	Price         Money
	Change        Money
	ChangePercent Percent
	Volume        string // display only, never parsed.

	// History is a synthetic intraday chart. It is regenerated on every quote
	// update and must not be used for accounting.
	History []Sample
}

// Sample is one point of an Instrument's intraday chart.
type Sample struct {
	Time  string // "9:00" ... "16:00"
	Price Money
}

// Quote is a partial update of an Instrument as returned by a quote provider.
type Quote struct {
	Price         Money
	Change        Money
	ChangePercent Percent
	Volume        string // empty when the provider did not report it.
}

var errNegativePrice = errors.New("negative price")

// Validate reports whether the quote can be merged.
func (q Quote) Validate() error {
	if q.Price.IsNegative() {
		return errNegativePrice
	}
	return nil
}

// CanonicalSymbol returns the form under which a symbol is stored: trimmed and uppercase.
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// clone returns a deep copy, so that callers never share the history slice
// with the registry.
func (in Instrument) clone() Instrument {
	in.History = slices.Clone(in.History)
	return in
}

// Up reports whether the instrument moved up (or not at all) since the reference price.
func (in Instrument) Up() bool { return !in.Change.IsNegative() }

// apply replaces the quote fields and the history. The volume is kept when
// the quote does not carry one.
func (in *Instrument) apply(q Quote, history []Sample) {
	in.Price = q.Price
	in.Change = q.Change
	in.ChangePercent = q.ChangePercent
	if q.Volume != "" {
		in.Volume = q.Volume
	}
	in.History = history
}
