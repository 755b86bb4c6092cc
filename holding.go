package papertrade

import "time"

// HoldingReport is a view of the ledger valued at current prices.
type HoldingReport struct {
	Time                time.Time // Generation time
	Cash                Money
	Equity              Money
	NetLiquidationValue Money
	Positions           []PositionHolding
}

// PositionHolding is the valuation of a single position.
type PositionHolding struct {
	Symbol            string
	Quantity          Quantity
	AverageEntryPrice Money
	Price             Money
	Stale             bool // no current price, valued at the last fill price.
	MarketValue       Money
	CostBasis         Money
	PL                Money
	PLPercent         Percent
	HasPLPercent      bool // false when the cost basis is zero.
}

// NewHoldingReport values every position of 'l' with 'prices'.
func NewHoldingReport(l *Ledger, prices PriceSource, now time.Time) *HoldingReport {
	cash, positions := l.snapshot()
	r := &HoldingReport{
		Time:      now,
		Cash:      cash,
		Equity:    equity(cash.Currency(), positions, prices),
		Positions: make([]PositionHolding, 0, len(positions)),
	}
	r.NetLiquidationValue = cash.Add(r.Equity)

	for _, pos := range positions {
		price, stale := valuationPrice(pos, prices)
		value := price.Mul(pos.Quantity)
		pct, ok := plPercent(pos, price)
		r.Positions = append(r.Positions, PositionHolding{
			Symbol:            pos.Symbol,
			Quantity:          pos.Quantity,
			AverageEntryPrice: pos.AverageEntryPrice,
			Price:             price,
			Stale:             stale,
			MarketValue:       value,
			CostBasis:         pos.CostBasis(),
			PL:                value.Sub(pos.CostBasis()),
			PLPercent:         pct,
			HasPLPercent:      ok,
		})
	}
	return r
}
