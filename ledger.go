package papertrade

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// ErrRejected is wrapped by every order rejection, the ledger state being left
// untouched.
var ErrRejected = errors.New("order rejected")

// Reasons for rejecting an order.
var (
	ErrInvalidSymbol        = fmt.Errorf("%w: missing symbol", ErrRejected)
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be a positive whole number", ErrRejected)
	ErrInvalidPrice         = fmt.Errorf("%w: negative price", ErrRejected)
	ErrCurrencyMismatch     = fmt.Errorf("%w: price currency does not match cash currency", ErrRejected)
	ErrInsufficientCash     = fmt.Errorf("%w: insufficient cash", ErrRejected)
	ErrNoPosition           = fmt.Errorf("%w: no position", ErrRejected)
	ErrInsufficientQuantity = fmt.Errorf("%w: quantity exceeds position", ErrRejected)
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Position is the holding of one instrument.
type Position struct {
	Symbol            string
	Quantity          Quantity // always strictly positive
	AverageEntryPrice Money    // weighted average of all buy fills
	LastPrice         Money    // price of the last fill
}

// CostBasis returns the quantity valued at the average entry price.
func (p Position) CostBasis() Money { return p.AverageEntryPrice.Mul(p.Quantity) }

// Fill is the receipt of an executed order.
type Fill struct {
	Side     Side
	Symbol   string
	Quantity Quantity
	Price    Money // unit price
	Amount   Money // quantity * price
	Cash     Money // cash balance after the fill
}

// Ledger holds a cash balance and the open positions.
//
// Orders are either fully applied or rejected: there are no partial fills and
// cash can never become negative. A Ledger is safe for concurrent use.
type Ledger struct {
	mu        sync.RWMutex
	cash      Money
	symbols   []string // positions in opening order
	positions map[string]*Position
}

// NewLedger creates a ledger with an initial cash balance and no position.
func NewLedger(cash Money) *Ledger {
	return &Ledger{
		cash:      cash,
		positions: make(map[string]*Position),
	}
}

// validate checks the order fields that do not depend on the ledger state.
func (l *Ledger) validate(symbol string, quantity Quantity, unitPrice Money) error {
	if symbol == "" {
		return ErrInvalidSymbol
	}
	if !quantity.IsPositive() || !quantity.IsInteger() {
		return fmt.Errorf("%w, got %s", ErrInvalidQuantity, quantity)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w, got %s", ErrInvalidPrice, unitPrice)
	}
	if !l.cash.SameCurrency(unitPrice) {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, unitPrice.Currency(), l.cash.Currency())
	}
	return nil
}

// Buy purchases 'quantity' units of 'symbol' at 'unitPrice'.
//
// The whole order must be affordable. A new position starts at 'unitPrice',
// an existing one gets its average entry price re-weighted.
func (l *Ledger) Buy(symbol string, quantity Quantity, unitPrice Money) (Fill, error) {
	symbol = CanonicalSymbol(symbol)
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validate(symbol, quantity, unitPrice); err != nil {
		return Fill{}, err
	}
	cost := unitPrice.Mul(quantity)
	if l.cash.LessThan(cost) {
		return Fill{}, fmt.Errorf("%w: cannot buy for %s, cash balance is %s", ErrInsufficientCash, cost, l.cash)
	}

	l.cash = l.cash.Sub(cost)
	if pos, ok := l.positions[symbol]; ok {
		total := pos.Quantity.Add(quantity)
		pos.AverageEntryPrice = pos.CostBasis().Add(cost).Div(total)
		pos.Quantity = total
		pos.LastPrice = unitPrice
	} else {
		l.positions[symbol] = &Position{
			Symbol:            symbol,
			Quantity:          quantity,
			AverageEntryPrice: unitPrice,
			LastPrice:         unitPrice,
		}
		l.symbols = append(l.symbols, symbol)
	}
	return Fill{Side: SideBuy, Symbol: symbol, Quantity: quantity, Price: unitPrice, Amount: cost, Cash: l.cash}, nil
}

// Sell disposes of 'quantity' units of 'symbol' at 'unitPrice'.
//
// Selling never changes the average entry price of the remainder. A position
// sold entirely is removed.
func (l *Ledger) Sell(symbol string, quantity Quantity, unitPrice Money) (Fill, error) {
	symbol = CanonicalSymbol(symbol)
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validate(symbol, quantity, unitPrice); err != nil {
		return Fill{}, err
	}
	pos, ok := l.positions[symbol]
	if !ok {
		return Fill{}, fmt.Errorf("%w in %s", ErrNoPosition, symbol)
	}
	if pos.Quantity.LessThan(quantity) {
		return Fill{}, fmt.Errorf("%w: cannot sell %s %s, owned %s", ErrInsufficientQuantity, quantity, symbol, pos.Quantity)
	}

	proceeds := unitPrice.Mul(quantity)
	l.cash = l.cash.Add(proceeds)
	if pos.Quantity.Equal(quantity) {
		delete(l.positions, symbol)
		l.symbols = slices.DeleteFunc(l.symbols, func(s string) bool { return s == symbol })
	} else {
		pos.Quantity = pos.Quantity.Sub(quantity)
		pos.LastPrice = unitPrice
	}
	return Fill{Side: SideSell, Symbol: symbol, Quantity: quantity, Price: unitPrice, Amount: proceeds, Cash: l.cash}, nil
}

// Cash returns the cash balance.
func (l *Ledger) Cash() Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

// Position returns the position in 'symbol', if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, ok := l.positions[CanonicalSymbol(symbol)]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// OwnedQuantity returns the quantity held in 'symbol', zero when there is no position.
func (l *Ledger) OwnedQuantity(symbol string) Quantity {
	pos, _ := l.Position(symbol)
	return pos.Quantity
}

// Positions iterates over a copy of the open positions in opening order.
func (l *Ledger) Positions() iter.Seq[Position] {
	_, positions := l.snapshot()
	return slices.Values(positions)
}

// snapshot returns the cash and a copy of the positions read atomically.
func (l *Ledger) snapshot() (Money, []Position) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	positions := make([]Position, 0, len(l.symbols))
	for _, s := range l.symbols {
		positions = append(positions, *l.positions[s])
	}
	return l.cash, positions
}

// MarketValue returns the value of the position in 'symbol' at 'currentPrice'.
func (l *Ledger) MarketValue(symbol string, currentPrice Money) Money {
	return currentPrice.Mul(l.OwnedQuantity(symbol))
}

// UnrealizedPL returns the gain (or loss) of the position in 'symbol' if it
// were sold at 'currentPrice'.
func (l *Ledger) UnrealizedPL(symbol string, currentPrice Money) Money {
	pos, _ := l.Position(symbol)
	return currentPrice.Mul(pos.Quantity).Sub(pos.CostBasis())
}

// UnrealizedPLPercent returns UnrealizedPL relative to the cost basis. It is
// not defined (false) when the cost basis is zero.
func (l *Ledger) UnrealizedPLPercent(symbol string, currentPrice Money) (Percent, bool) {
	pos, _ := l.Position(symbol)
	return plPercent(pos, currentPrice)
}

func plPercent(pos Position, currentPrice Money) (Percent, bool) {
	basis := pos.CostBasis()
	if basis.IsZero() {
		return 0, false
	}
	pl := currentPrice.Mul(pos.Quantity).Sub(basis)
	return Percent(pl.Ratio(basis) * 100), true
}

// valuationPrice returns the price used to value 'pos': the current one when
// known, otherwise the price of its last fill.
func valuationPrice(pos Position, prices PriceSource) (price Money, stale bool) {
	if prices != nil {
		if p, ok := prices.Price(pos.Symbol); ok {
			return p, false
		}
	}
	return pos.LastPrice, true
}

func equity(cur string, positions []Position, prices PriceSource) Money {
	total := M(0, cur)
	for _, pos := range positions {
		price, _ := valuationPrice(pos, prices)
		total = total.Add(price.Mul(pos.Quantity))
	}
	return total
}

// Equity returns the market value of all positions.
func (l *Ledger) Equity(prices PriceSource) Money {
	cash, positions := l.snapshot()
	return equity(cash.Currency(), positions, prices)
}

// NetLiquidationValue returns the cash plus the market value of all positions.
//
// A position without a current price in 'prices' is valued at its last known
// price.
func (l *Ledger) NetLiquidationValue(prices PriceSource) Money {
	cash, positions := l.snapshot()
	return cash.Add(equity(cash.Currency(), positions, prices))
}
