package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// ChartOptions parameterise the chart API client.
type ChartOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Chart fetches index levels and daily close series from a Yahoo-style
// chart endpoint.
type Chart struct {
	opts    ChartOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewChart constructs a chart API client.
func NewChart(opts ChartOptions, logger zerolog.Logger) *Chart {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultChartBaseURL
	}

	return &Chart{
		opts:    opts,
		logger:  logger.With().Str("component", "chart_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchIndex returns the latest level of a symbol and its as-of date.
func (c *Chart) FetchIndex(ctx context.Context, symbol string) (decimal.Decimal, string, error) {
	payload, err := c.fetchChart(ctx, symbol, "5d")
	if err != nil {
		return decimal.Decimal{}, "", err
	}

	closes, timestamps := payload.closes()
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil {
			continue
		}
		asOf := time.Unix(timestamps[i], 0).UTC().Format("2006-01-02")
		return decimal.NewFromFloat(*closes[i]), asOf, nil
	}

	return decimal.Decimal{}, "", fmt.Errorf("no usable close for %s", symbol)
}

// FetchCloses returns an oldest-first close series covering roughly the
// requested number of days. Missing closes are skipped.
func (c *Chart) FetchCloses(ctx context.Context, symbol string, days int) ([]decimal.Decimal, error) {
	if days <= 0 {
		days = 30
	}

	payload, err := c.fetchChart(ctx, symbol, fmt.Sprintf("%dd", days))
	if err != nil {
		return nil, err
	}

	closes, _ := payload.closes()
	series := make([]decimal.Decimal, 0, len(closes))
	for _, close := range closes {
		if close == nil {
			continue
		}
		series = append(series, decimal.NewFromFloat(*close))
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no usable closes for %s", symbol)
	}
	return series, nil
}

func (c *Chart) fetchChart(ctx context.Context, symbol, window string) (*chartResponse, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("symbol required")
	}

	endpoint := fmt.Sprintf("%s/%s?range=%s&interval=1d", c.baseURL, url.PathEscape(symbol), window)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "market-lens/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart api error (%d) for %s", resp.StatusCode, symbol)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	return &payload, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (r *chartResponse) closes() ([]*float64, []int64) {
	result := r.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	return result.Indicators.Quote[0].Close, result.Timestamp
}

var (
	_ IndexFetcher  = (*Chart)(nil)
	_ SeriesFetcher = (*Chart)(nil)
)
