package renderer

import (
	"github.com/etnz/papertrade"
)

// WatchList is the data needed to render the watch-list.
type WatchList struct {
	Status      string
	Refreshing  bool
	Instruments []papertrade.Instrument
}

// NewWatchList creates the watch-list view of a terminal.
func NewWatchList(t *papertrade.Terminal) *WatchList {
	return &WatchList{
		Status:      t.Status().String(),
		Refreshing:  t.Refreshing(),
		Instruments: t.Registry().All(),
	}
}

// Detail is an instrument along with the position held in it.
type Detail struct {
	papertrade.Instrument
	Position *DetailPosition // nil when the instrument is not owned.
}

// DetailPosition is a position valued at the instrument's current price.
type DetailPosition struct {
	Quantity          papertrade.Quantity
	AverageEntryPrice papertrade.Money
	MarketValue       papertrade.Money
	PL                papertrade.Money
	PLPercent         papertrade.Percent
	HasPLPercent      bool
}

// NewDetail creates the detail view of 'in'.
func NewDetail(in papertrade.Instrument, l *papertrade.Ledger) *Detail {
	d := &Detail{Instrument: in}
	pos, ok := l.Position(in.Symbol)
	if !ok {
		return d
	}
	pct, hasPct := l.UnrealizedPLPercent(in.Symbol, in.Price)
	d.Position = &DetailPosition{
		Quantity:          pos.Quantity,
		AverageEntryPrice: pos.AverageEntryPrice,
		MarketValue:       l.MarketValue(in.Symbol, in.Price),
		PL:                l.UnrealizedPL(in.Symbol, in.Price),
		PLPercent:         pct,
		HasPLPercent:      hasPct,
	}
	return d
}
