// Package gemini implements a papertrade.Provider on top of Google's Gemini
// models, grounded with Google Search for quotes, lookups and news.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/papertrade"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// generator is the subset of genai.Models used by the provider.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider serves quotes, analysis, news and lookups from Gemini.
type Provider struct {
	models   generator
	model    string
	currency string
}

// New creates a Provider authenticated with 'apiKey'. An empty model means
// DefaultModel, and prices are in 'currency' (USD when empty).
func New(ctx context.Context, apiKey, model, currency string) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot initialize Gemini's client: %w", err)
	}
	return newProvider(client.Models, model, currency), nil
}

func newProvider(models generator, model, currency string) *Provider {
	if model == "" {
		model = DefaultModel
	}
	if currency == "" {
		currency = "USD"
	}
	return &Provider{models: models, model: model, currency: currency}
}

var errNoResponse = errors.New("no response")

// searchTool grounds the answer with Google Search.
var searchTool = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}

// ask sends a single prompt and returns the first candidate.
func (p *Provider) ask(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.Candidate, string, error) {
	resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		return nil, "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, "", fmt.Errorf("%w from %s", errNoResponse, p.model)
	}
	cand := resp.Candidates[0]
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		b.WriteString(part.Text)
	}
	return cand, b.String(), nil
}

// FetchQuotes implements papertrade.QuoteFetcher.
func (p *Provider) FetchQuotes(ctx context.Context, symbols []string) (map[string]papertrade.Quote, error) {
	_, text, err := p.ask(ctx, quotesPrompt(symbols, p.currency), &genai.GenerateContentConfig{Tools: searchTool})
	if err != nil {
		return nil, err
	}
	return parseQuotes(text, p.currency)
}

// Lookup implements papertrade.Finder.
func (p *Provider) Lookup(ctx context.Context, query string) (papertrade.Instrument, error) {
	_, text, err := p.ask(ctx, lookupPrompt(query), &genai.GenerateContentConfig{Tools: searchTool})
	if err != nil {
		return papertrade.Instrument{}, err
	}
	return parseInstrument(text, p.currency)
}

// analysisSchema constrains the analysis to a summary and a sentiment.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"sentiment": {
			Type: genai.TypeString,
			Enum: []string{string(papertrade.Bullish), string(papertrade.Bearish), string(papertrade.Neutral)},
		},
	},
	Required: []string{"summary", "sentiment"},
}

// Analyze implements papertrade.Analyst.
func (p *Provider) Analyze(ctx context.Context, in papertrade.Instrument) (papertrade.Analysis, error) {
	_, text, err := p.ask(ctx, analysisPrompt(in), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	})
	if err != nil {
		return papertrade.Analysis{}, err
	}
	return parseAnalysis(text)
}

// News implements papertrade.NewsWire. Sources are the web pages the answer
// was grounded on.
func (p *Provider) News(ctx context.Context) (papertrade.News, error) {
	cand, text, err := p.ask(ctx, newsPrompt, &genai.GenerateContentConfig{Tools: searchTool})
	if err != nil {
		return papertrade.News{}, err
	}
	news := papertrade.News{Text: strings.TrimSpace(text)}
	if news.Text == "" {
		news.Text = "NO DATA"
	}
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			news.Sources = append(news.Sources, papertrade.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return news, nil
}
