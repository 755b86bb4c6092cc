package renderer

import (
	"strings"

	"github.com/etnz/papertrade"
	"github.com/shopspring/decimal"
)

var ticks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws the history as a line of block characters, scaled between
// the lowest and the highest sample.
func Sparkline(history []papertrade.Sample) string {
	if len(history) == 0 {
		return ""
	}
	lo, hi := history[0].Price.Decimal(), history[0].Price.Decimal()
	for _, s := range history[1:] {
		lo = decimal.Min(lo, s.Price.Decimal())
		hi = decimal.Max(hi, s.Price.Decimal())
	}
	span := hi.Sub(lo)
	top := decimal.NewFromInt(int64(len(ticks) - 1))

	var b strings.Builder
	for _, s := range history {
		i := 0
		if !span.IsZero() {
			i = int(s.Price.Decimal().Sub(lo).Mul(top).Div(span).Round(0).IntPart())
		}
		b.WriteRune(ticks[i])
	}
	return b.String()
}
