package jsonquote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etnz/papertrade"
)

// newServer serves 'docs' keyed by the "s" query parameter.
func newServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Query().Get("s")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSource_FetchQuotes(t *testing.T) {
	srv := newServer(t, map[string]string{
		"SPY":   `{"quote": {"last": 512.5, "chg": "1,50", "pct": "0.29%", "vol": "85.2M"}}`,
		"QQQ":   `{"quote": {"last": "440.50", "chg": -2, "pct": -0.45, "vol": 42100000}}`,
		"BROKE": `{"quote": {"last": "n/a"}}`,
	})
	src := &Source{
		URL:           srv.URL + "/q?s={symbol}",
		Price:         "$.quote.last",
		Change:        "$.quote.chg",
		ChangePercent: "$.quote.pct",
		Volume:        "$.quote.vol",
		Client:        srv.Client(),
		Concurrency:   2,
	}

	quotes, err := src.FetchQuotes(context.Background(), []string{"SPY", "QQQ", "BROKE", "MISSING"})
	if err != nil {
		t.Fatalf("FetchQuotes() unexpected error %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("FetchQuotes() = %v, want SPY and QQQ only", quotes)
	}

	spy := quotes["SPY"]
	if !spy.Price.Equal(papertrade.M(512.5, "USD")) || !spy.Change.Equal(papertrade.M(1.5, "USD")) || !spy.ChangePercent.Equal(0.29) || spy.Volume != "85.2M" {
		t.Errorf("SPY = %+v", spy)
	}
	qqq := quotes["QQQ"]
	if !qqq.Price.Equal(papertrade.M(440.5, "USD")) || !qqq.Change.Equal(papertrade.M(-2, "USD")) || qqq.Volume != "42100000" {
		t.Errorf("QQQ = %+v", qqq)
	}
}

func TestSource_FetchQuotes_AllFailed(t *testing.T) {
	srv := newServer(t, map[string]string{"SPY": `{"price": -1}`})
	src := &Source{URL: srv.URL + "/q?s={symbol}", Price: "$.price", Client: srv.Client()}

	_, err := src.FetchQuotes(context.Background(), []string{"SPY", "QQQ"})
	if err == nil {
		t.Fatal("FetchQuotes() expected an error when every symbol failed")
	}
	if !strings.Contains(err.Error(), "SPY") || !strings.Contains(err.Error(), "QQQ") {
		t.Errorf("FetchQuotes() error = %v, want both symbols reported", err)
	}
}

func TestSource_Currency(t *testing.T) {
	srv := newServer(t, map[string]string{"AIR": `{"last": 150.2}`})
	src := &Source{URL: srv.URL + "/q?s={symbol}", Price: "$.last", Currency: "EUR", Client: srv.Client()}

	quotes, err := src.FetchQuotes(context.Background(), []string{"AIR"})
	if err != nil {
		t.Fatalf("FetchQuotes() unexpected error %v", err)
	}
	if got := quotes["AIR"].Price; !got.Equal(papertrade.M(150.2, "EUR")) {
		t.Errorf("Price = %v, want EUR 150.2", got)
	}
}

func TestSource_Validate(t *testing.T) {
	testCases := []struct {
		name string
		src  Source
		want error
	}{
		{"valid", Source{URL: "https://example.com/{symbol}", Price: "$.p"}, nil},
		{"no placeholder", Source{URL: "https://example.com/", Price: "$.p"}, errNoSymbol},
		{"no price", Source{URL: "https://example.com/{symbol}"}, errNoPrice},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.src.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	jobj := map[string]any{
		"f":    1.25,
		"s":    " 3,5 ",
		"list": []any{7.0, 8.0},
		"bad":  true,
	}
	testCases := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"$.f", "1.25", false},
		{"$.s", "3.5", false},
		{"$.list[0]", "7", false},
		{"$.bad", "", true},
		{"$.missing", "", true},
	}
	for _, tc := range testCases {
		got, err := number(jobj, tc.path)
		if (err != nil) != tc.wantErr {
			t.Errorf("number(%q) error = %v, wantErr %v", tc.path, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got.String() != tc.want {
			t.Errorf("number(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
