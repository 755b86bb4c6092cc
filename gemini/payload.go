package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/papertrade"
	"github.com/shopspring/decimal"
)

// stripFences removes the markdown code fence models tend to wrap JSON in,
// despite being asked not to.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// drop the language tag, if any.
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// volume accepts both a JSON string and a JSON number.
type volume string

func (v *volume) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = volume(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid volume %s: %w", data, err)
	}
	*v = volume(n.String())
	return nil
}

// quotePayload is the JSON object describing a single quote.
type quotePayload struct {
	Price         *decimal.Decimal `json:"price"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent float64          `json:"changePercent"`
	Volume        volume           `json:"volume"`
}

func (q quotePayload) quote(cur string) papertrade.Quote {
	return papertrade.Quote{
		Price:         papertrade.M(*q.Price, cur),
		Change:        papertrade.M(q.Change, cur),
		ChangePercent: papertrade.Percent(q.ChangePercent),
		Volume:        string(q.Volume),
	}
}

var errNoQuotes = errors.New("no quote in the response")

// parseQuotes decodes a symbol keyed object of quotes. Entries without a price are dropped.
// A payload without any priced entry is an error.
func parseQuotes(text, cur string) (map[string]papertrade.Quote, error) {
	var payload map[string]*quotePayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return nil, fmt.Errorf("cannot parse quotes: %w", err)
	}
	quotes := make(map[string]papertrade.Quote, len(payload))
	for symbol, q := range payload {
		if q == nil || q.Price == nil {
			continue
		}
		quotes[symbol] = q.quote(cur)
	}
	if len(quotes) == 0 {
		return nil, errNoQuotes
	}
	return quotes, nil
}

type instrumentPayload struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	quotePayload
}

// parseInstrument decodes a lookup answer. A null answer, or one without a
// symbol or a price, is papertrade.ErrNotFound.
func parseInstrument(text, cur string) (papertrade.Instrument, error) {
	var payload *instrumentPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return papertrade.Instrument{}, fmt.Errorf("cannot parse instrument: %w", err)
	}
	if payload == nil || strings.TrimSpace(payload.Symbol) == "" || payload.Price == nil || payload.Price.IsZero() {
		return papertrade.Instrument{}, papertrade.ErrNotFound
	}
	q := payload.quote(cur)
	return papertrade.Instrument{
		Symbol:        papertrade.CanonicalSymbol(payload.Symbol),
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
	}, nil
}

type analysisPayload struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

func parseAnalysis(text string) (papertrade.Analysis, error) {
	var payload analysisPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return papertrade.Analysis{}, fmt.Errorf("cannot parse analysis: %w", err)
	}
	sentiment, err := papertrade.ParseSentiment(payload.Sentiment)
	if err != nil {
		return papertrade.Analysis{}, err
	}
	if payload.Summary == "" {
		payload.Summary = "NO DATA"
	}
	return papertrade.Analysis{Summary: payload.Summary, Sentiment: sentiment}, nil
}
