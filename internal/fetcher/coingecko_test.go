package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCoinGeckoFetchSpotSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "simple/price") {
			t.Fatalf("path should target simple/price, got %s", r.URL.Path)
		}
		if ids := r.URL.Query().Get("ids"); !strings.Contains(ids, "bitcoin") {
			t.Fatalf("ids query missing: %q", ids)
		}
		_ = json.NewEncoder(w).Encode(map[string]map[string]float64{
			"bitcoin":  {"usd": 64250.12},
			"ethereum": {"usd": 3401.55},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	prices, err := c.FetchSpot(context.Background(), []string{"bitcoin", "ethereum"})
	if err != nil {
		t.Fatalf("expected success: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(prices))
	}
	if prices["bitcoin"].InexactFloat64() != 64250.12 {
		t.Fatalf("unexpected bitcoin price: %s", prices["bitcoin"].String())
	}
}

func TestCoinGeckoFetchSpotOmitsUnknownIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]map[string]float64{
			"bitcoin": {"usd": 64000},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	prices, err := c.FetchSpot(context.Background(), []string{"bitcoin", "notacoin"})
	if err != nil {
		t.Fatalf("expected success: %v", err)
	}
	if _, ok := prices["notacoin"]; ok {
		t.Fatal("unknown id should be omitted")
	}
	if _, ok := prices["bitcoin"]; !ok {
		t.Fatal("known id should be present")
	}
}

func TestCoinGeckoFetchSpotHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := c.FetchSpot(context.Background(), []string{"bitcoin"}); err == nil {
		t.Fatal("HTTP error should fail the fetch")
	}
}

func TestCoinGeckoFetchSpotRequiresIDs(t *testing.T) {
	c := NewCoinGecko(CoinGeckoOptions{}, noopLogger())
	if _, err := c.FetchSpot(context.Background(), nil); err == nil {
		t.Fatal("empty id list should be rejected")
	}
}
