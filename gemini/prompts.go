package gemini

import (
	"fmt"
	"strings"

	"github.com/etnz/papertrade"
)

func quotesPrompt(symbols []string, currency string) string {
	return fmt.Sprintf(`
Get the absolute latest real-time stock price (%s), numerical price change, percentage change, and volume for these symbols: %s.

CRITICAL INSTRUCTION:
Return ONLY a raw JSON string. Do not use Markdown code blocks. Do not add explanation.

Required JSON Format:
{
  "SYMBOL": { "price": number, "change": number, "changePercent": number, "volume": "string" },
  "SYMBOL2": { ... }
}
`, currency, strings.Join(symbols, ", "))
}

func lookupPrompt(query string) string {
	return fmt.Sprintf(`
Find the real-time stock market data for: %q.

CRITICAL: Return ONLY a raw JSON string. No markdown.

Required JSON Format:
{
  "symbol": "TICKER_SYMBOL_UPPERCASE",
  "name": "SHORT_COMPANY_NAME_UPPERCASE",
  "price": number,
  "change": number,
  "changePercent": number,
  "volume": "string",
  "description": "Short description (max 10 words)"
}

If the symbol is ambiguous or not found, return null.
`, query)
}

func analysisPrompt(in papertrade.Instrument) string {
	return fmt.Sprintf(`
Analyze this stock data immediately.
Symbol: %s
Price: %s
Change: %s (%s)
Volume: %s

STYLE: BRUTALIST, RAW, ROBOTIC.
NO FILLER WORDS. SHORT SENTENCES. UPPERCASE ONLY.
Explain the movement. Predict the next hour based on volatility.
`, in.Symbol, in.Price.Decimal(), in.Change.Decimal(), in.ChangePercent, in.Volume)
}

const newsPrompt = "List top 5 critical financial news headlines right now. Format as a raw list. Uppercase only. No numbering."
