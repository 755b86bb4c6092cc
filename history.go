package papertrade

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

const (
	sessionOpen  = 9  // first sample hour
	sessionClose = 16 // last sample hour, holds the current price
	sampleStep   = 15 // minutes between samples

	openingGap = 0.02  // the walk starts within ±2% of the price
	stepSize   = 0.015 // a step moves at most ±0.75% of the price
)

// HistoryLen is the number of samples produced by GenerateHistory.
const HistoryLen = (sessionClose-sessionOpen)*60/sampleStep + 1

// GenerateHistory returns a synthetic intraday chart for an instrument
// currently priced at 'price'.
//
// Samples follow a random walk whose steps are proportional to the price, and
// the last sample ("16:00") is exactly 'price' so that the chart always ends
// at the displayed price.
func GenerateHistory(r *rand.Rand, price Money) []Sample {
	base := price.Decimal()
	gap := decimal.NewFromFloat(1 + (r.Float64()*2-1)*openingGap)
	current := base.Mul(gap)
	step := base.Mul(decimal.NewFromFloat(stepSize))

	history := make([]Sample, 0, HistoryLen)
	for h := sessionOpen; h < sessionClose; h++ {
		for m := 0; m < 60; m += sampleStep {
			current = current.Add(step.Mul(decimal.NewFromFloat(r.Float64() - 0.5)))
			if current.IsNegative() {
				current = decimal.Zero
			}
			history = append(history, Sample{
				Time:  fmt.Sprintf("%d:%02d", h, m),
				Price: M(current.Round(2), price.Currency()),
			})
		}
	}
	history = append(history, Sample{Time: fmt.Sprintf("%d:00", sessionClose), Price: price})
	return history
}
