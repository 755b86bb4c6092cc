package papertrade

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// instrument is a helper for test to create a watch-list instrument.
func instrument(symbol string, price float64) Instrument {
	return Instrument{Symbol: symbol, Name: symbol + " INC", Price: USD(price), Volume: "1M"}
}
