package papertrade

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestLedger_Scenario(t *testing.T) {
	l := NewLedger(USD(10000))

	steps := []struct {
		name     string
		side     Side
		quantity int
		price    float64
		wantCash Money
		wantQty  int    // 0 means no position
		wantAvg  string // formatted average entry price
	}{
		{"open", SideBuy, 10, 100, USD(9000), 10, "$100.00"},
		{"average up", SideBuy, 5, 110, USD(8450), 15, "$103.33"},
		{"close", SideSell, 15, 120, USD(10250), 0, ""},
	}

	for _, s := range steps {
		var err error
		if s.side == SideBuy {
			_, err = l.Buy("NVDA", Q(s.quantity), USD(s.price))
		} else {
			_, err = l.Sell("NVDA", Q(s.quantity), USD(s.price))
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", s.name, err)
		}
		if got := l.Cash(); !got.Equal(s.wantCash) {
			t.Errorf("%s: Cash() = %v, want %v", s.name, got, s.wantCash)
		}
		pos, ok := l.Position("NVDA")
		if s.wantQty == 0 {
			if ok {
				t.Errorf("%s: Position() = %v, want no position", s.name, pos)
			}
			continue
		}
		if !ok {
			t.Fatalf("%s: Position() not found", s.name)
		}
		if !pos.Quantity.Equal(Q(s.wantQty)) {
			t.Errorf("%s: Quantity = %v, want %v", s.name, pos.Quantity, s.wantQty)
		}
		if got := pos.AverageEntryPrice.String(); got != s.wantAvg {
			t.Errorf("%s: AverageEntryPrice = %v, want %v", s.name, got, s.wantAvg)
		}
	}
}

func TestLedger_Buy(t *testing.T) {
	t.Run("first buy sets the average to the price", func(t *testing.T) {
		l := NewLedger(USD(1000))
		fill, err := l.Buy("spy", Q(3), USD(12.34))
		if err != nil {
			t.Fatalf("Buy() unexpected error %v", err)
		}
		pos, _ := l.Position("SPY")
		if !pos.AverageEntryPrice.Equal(USD(12.34)) {
			t.Errorf("AverageEntryPrice = %v, want %v", pos.AverageEntryPrice, USD(12.34))
		}
		if fill.Symbol != "SPY" || fill.Side != SideBuy || !fill.Amount.Equal(USD(37.02)) || !fill.Cash.Equal(USD(962.98)) {
			t.Errorf("Buy() fill = %+v", fill)
		}
	})

	t.Run("weighted average", func(t *testing.T) {
		l := NewLedger(USD(10000))
		l.Buy("SPY", Q(10), USD(100))
		l.Buy("SPY", Q(10), USD(120))
		pos, _ := l.Position("SPY")
		if !pos.AverageEntryPrice.Equal(USD(110)) {
			t.Errorf("AverageEntryPrice = %v, want %v", pos.AverageEntryPrice, USD(110))
		}
		if !pos.Quantity.Equal(Q(20)) {
			t.Errorf("Quantity = %v, want 20", pos.Quantity)
		}
	})

	t.Run("exactly affordable", func(t *testing.T) {
		l := NewLedger(USD(1000))
		if _, err := l.Buy("SPY", Q(10), USD(100)); err != nil {
			t.Fatalf("Buy() unexpected error %v", err)
		}
		if !l.Cash().IsZero() {
			t.Errorf("Cash() = %v, want 0", l.Cash())
		}
	})
}

func TestLedger_Rejections(t *testing.T) {
	testCases := []struct {
		name    string
		order   func(l *Ledger) (Fill, error)
		wantErr error
	}{
		{"unaffordable", func(l *Ledger) (Fill, error) { return l.Buy("NVDA", Q(11), USD(100)) }, ErrInsufficientCash},
		{"zero quantity", func(l *Ledger) (Fill, error) { return l.Buy("NVDA", Q(0), USD(100)) }, ErrInvalidQuantity},
		{"negative quantity", func(l *Ledger) (Fill, error) { return l.Buy("NVDA", Q(-1), USD(100)) }, ErrInvalidQuantity},
		{"fractional quantity", func(l *Ledger) (Fill, error) { return l.Buy("NVDA", Q(0.5), USD(100)) }, ErrInvalidQuantity},
		{"negative price", func(l *Ledger) (Fill, error) { return l.Buy("NVDA", Q(1), USD(-1)) }, ErrInvalidPrice},
		{"other currency", func(l *Ledger) (Fill, error) { return l.Buy("NVDA", Q(1), EUR(1)) }, ErrCurrencyMismatch},
		{"no symbol", func(l *Ledger) (Fill, error) { return l.Buy(" ", Q(1), USD(1)) }, ErrInvalidSymbol},
		{"sell more than owned", func(l *Ledger) (Fill, error) { return l.Sell("SPY", Q(5), USD(100)) }, ErrInsufficientQuantity},
		{"sell without position", func(l *Ledger) (Fill, error) { return l.Sell("QQQ", Q(1), USD(100)) }, ErrNoPosition},
		{"sell zero", func(l *Ledger) (Fill, error) { return l.Sell("SPY", Q(0), USD(100)) }, ErrInvalidQuantity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger(USD(1000))
			if _, err := l.Buy("SPY", Q(3), USD(100)); err != nil {
				t.Fatalf("setup Buy() unexpected error %v", err)
			}
			cash, pos := l.Cash(), l.OwnedQuantity("SPY")

			_, err := tc.order(l)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("order error = %v, want %v", err, tc.wantErr)
			}
			if !errors.Is(err, ErrRejected) {
				t.Errorf("order error = %v, want it to wrap ErrRejected", err)
			}
			if !l.Cash().Equal(cash) {
				t.Errorf("Cash() = %v, want unchanged %v", l.Cash(), cash)
			}
			if !l.OwnedQuantity("SPY").Equal(pos) {
				t.Errorf("OwnedQuantity() = %v, want unchanged %v", l.OwnedQuantity("SPY"), pos)
			}
			if _, ok := l.Position("NVDA"); ok {
				t.Error("a rejected order opened a position")
			}
		})
	}
}

func TestLedger_Sell(t *testing.T) {
	l := NewLedger(USD(10000))
	l.Buy("SPY", Q(10), USD(100))
	l.Buy("SPY", Q(10), USD(120))

	fill, err := l.Sell("SPY", Q(5), USD(200))
	if err != nil {
		t.Fatalf("Sell() unexpected error %v", err)
	}
	if !fill.Amount.Equal(USD(1000)) {
		t.Errorf("Sell() amount = %v, want %v", fill.Amount, USD(1000))
	}
	pos, _ := l.Position("SPY")
	if !pos.AverageEntryPrice.Equal(USD(110)) {
		t.Errorf("AverageEntryPrice after partial sell = %v, want %v", pos.AverageEntryPrice, USD(110))
	}
	if !pos.Quantity.Equal(Q(15)) {
		t.Errorf("Quantity after partial sell = %v, want 15", pos.Quantity)
	}

	if _, err := l.Sell("SPY", Q(15), USD(90)); err != nil {
		t.Fatalf("Sell() unexpected error %v", err)
	}
	if _, ok := l.Position("SPY"); ok {
		t.Error("Position() still exists after selling all")
	}
	var n int
	for range l.Positions() {
		n++
	}
	if n != 0 {
		t.Errorf("Positions() has %d positions, want 0", n)
	}
	if !l.OwnedQuantity("SPY").IsZero() {
		t.Errorf("OwnedQuantity() = %v, want 0", l.OwnedQuantity("SPY"))
	}
}

func TestLedger_CashNeverNegative(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	symbols := []string{"SPY", "QQQ", "BTC"}
	l := NewLedger(USD(5000))

	for i := 0; i < 2000; i++ {
		sym := symbols[r.IntN(len(symbols))]
		qty := Q(r.IntN(20))
		price := USD(float64(r.IntN(100000)) / 100)
		if r.IntN(2) == 0 {
			l.Buy(sym, qty, price)
		} else {
			l.Sell(sym, qty, price)
		}
		if l.Cash().IsNegative() {
			t.Fatalf("step %d: Cash() = %v is negative", i, l.Cash())
		}
		for pos := range l.Positions() {
			if !pos.Quantity.IsPositive() {
				t.Fatalf("step %d: position %s has quantity %v", i, pos.Symbol, pos.Quantity)
			}
		}
	}
}

func TestLedger_Valuation(t *testing.T) {
	l := NewLedger(USD(10000))
	l.Buy("SPY", Q(10), USD(100))
	l.Buy("QQQ", Q(2), USD(50))

	if got := l.MarketValue("SPY", USD(120)); !got.Equal(USD(1200)) {
		t.Errorf("MarketValue() = %v, want %v", got, USD(1200))
	}
	if got := l.UnrealizedPL("SPY", USD(120)); !got.Equal(USD(200)) {
		t.Errorf("UnrealizedPL() = %v, want %v", got, USD(200))
	}
	if got, ok := l.UnrealizedPLPercent("SPY", USD(120)); !ok || !got.Equal(20) {
		t.Errorf("UnrealizedPLPercent() = %v, %v, want 20%%, true", got, ok)
	}
	if got, ok := l.UnrealizedPLPercent("DIA", USD(120)); ok {
		t.Errorf("UnrealizedPLPercent() without cost basis = %v, want undefined", got)
	}

	// QQQ has no current price: it is valued at its last fill price.
	prices := Prices{"SPY": USD(120)}
	if got := l.NetLiquidationValue(prices); !got.Equal(USD(8900 + 1200 + 100)) {
		t.Errorf("NetLiquidationValue() = %v, want %v", got, USD(10200))
	}
	if got := l.Equity(prices); !got.Equal(USD(1300)) {
		t.Errorf("Equity() = %v, want %v", got, USD(1300))
	}
}

func TestLedger_ZeroCostBasis(t *testing.T) {
	l := NewLedger(USD(10))
	if _, err := l.Buy("FREE", Q(3), USD(0)); err != nil {
		t.Fatalf("Buy() at zero price unexpected error %v", err)
	}
	if _, ok := l.UnrealizedPLPercent("FREE", USD(1)); ok {
		t.Error("UnrealizedPLPercent() defined for a zero cost basis")
	}
	if got := l.UnrealizedPL("FREE", USD(1)); !got.Equal(USD(3)) {
		t.Errorf("UnrealizedPL() = %v, want %v", got, USD(3))
	}
}
