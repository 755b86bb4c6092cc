// Package jsonquote fetches quotes from any HTTP endpoint serving one JSON
// document per symbol.
//
// Fields are located with jsonpath expressions, for instance:
//
//	src := &jsonquote.Source{
//		URL:   "https://example.com/quote?s={symbol}",
//		Price: "$.last",
//	}
package jsonquote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/papertrade"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SymbolPlaceholder is replaced by the (escaped) symbol in Source.URL.
const SymbolPlaceholder = "{symbol}"

// DefaultConcurrency is the number of requests in flight when Source.Concurrency is not set.
const DefaultConcurrency = 4

var (
	errNoPrice   = errors.New("no price path")
	errNoSymbol  = errors.New("url has no " + SymbolPlaceholder)
	errNotNumber = errors.New("not a number")
)

// Source describes a JSON quote endpoint. It implements papertrade.QuoteFetcher.
type Source struct {
	URL           string // must contain SymbolPlaceholder
	Price         string // jsonpath, required
	Change        string // jsonpath, optional
	ChangePercent string // jsonpath, optional
	Volume        string // jsonpath, optional
	Currency      string // USD when empty
	Concurrency   int
	Client        *http.Client
}

// Validate reports whether the source is usable.
func (s *Source) Validate() error {
	if !strings.Contains(s.URL, SymbolPlaceholder) {
		return fmt.Errorf("invalid quote source %q: %w", s.URL, errNoSymbol)
	}
	if s.Price == "" {
		return fmt.Errorf("invalid quote source %q: %w", s.URL, errNoPrice)
	}
	return nil
}

func (s *Source) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Source) currency() string {
	if s.Currency == "" {
		return "USD"
	}
	return s.Currency
}

// FetchQuotes implements papertrade.QuoteFetcher.
//
// Symbols are fetched concurrently. A symbol that cannot be fetched is logged
// and missing from the result, the call only fails when every symbol failed.
func (s *Source) FetchQuotes(ctx context.Context, symbols []string) (map[string]papertrade.Quote, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu     sync.Mutex
		quotes = make(map[string]papertrade.Quote, len(symbols))
		errs   []error
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, symbol := range symbols {
		g.Go(func() error {
			q, err := s.fetch(ctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("cannot fetch quote for %s: %v", symbol, err)
				errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
				return nil
			}
			quotes[symbol] = q
			return nil
		})
	}
	g.Wait()

	if len(quotes) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return quotes, nil
}

// fetch retrieves a single quote.
func (s *Source) fetch(ctx context.Context, symbol string) (papertrade.Quote, error) {
	addr := strings.ReplaceAll(s.URL, SymbolPlaceholder, url.QueryEscape(symbol))
	var jobj any
	if err := jwget(ctx, s.client(), addr, &jobj); err != nil {
		return papertrade.Quote{}, err
	}

	cur := s.currency()
	price, err := number(jobj, s.Price)
	if err != nil {
		return papertrade.Quote{}, err
	}
	q := papertrade.Quote{Price: papertrade.M(price, cur)}

	if s.Change != "" {
		v, err := number(jobj, s.Change)
		if err != nil {
			return papertrade.Quote{}, err
		}
		q.Change = papertrade.M(v, cur)
	}
	if s.ChangePercent != "" {
		v, err := number(jobj, s.ChangePercent)
		if err != nil {
			return papertrade.Quote{}, err
		}
		q.ChangePercent = papertrade.Percent(v.InexactFloat64())
	}
	if s.Volume != "" {
		v, err := get(jobj, s.Volume)
		if err != nil {
			return papertrade.Quote{}, err
		}
		if f, ok := v.(float64); ok {
			q.Volume = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			q.Volume = fmt.Sprint(v)
		}
	}
	return q, q.Validate()
}

// get evaluates 'path' on 'jobj'.
func get(jobj any, path string) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	// jsonpath may return a list of a single answer; keep the first one.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("cannot evaluate %q: no match", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

// number evaluates 'path' into a decimal. Some APIs return numbers as strings
// with a comma as decimal separator.
func number(jobj any, path string) (decimal.Decimal, error) {
	jval, err := get(jobj, path)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		sval := strings.ReplaceAll(v, ",", ".")
		sval = strings.ReplaceAll(sval, " ", "")
		sval = strings.TrimSuffix(sval, "%")
		if _, err := strconv.ParseFloat(sval, 64); err != nil {
			return decimal.Zero, fmt.Errorf("value of %q is an invalid string %q: %w", path, v, errNotNumber)
		}
		return decimal.NewFromString(sval)
	default:
		return decimal.Zero, fmt.Errorf("value of %q is %v: %w", path, jval, errNotNumber)
	}
}

// jwget performs an HTTP GET request and unmarshals the JSON response into 'data'.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
