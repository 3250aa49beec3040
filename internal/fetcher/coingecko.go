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

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoOptions parameterise the CoinGecko client.
type CoinGeckoOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// CoinGecko fetches crypto spot prices from the simple-price endpoint.
type CoinGecko struct {
	opts    CoinGeckoOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCoinGecko constructs a CoinGecko client.
func NewCoinGecko(opts CoinGeckoOptions, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultCoinGeckoBaseURL
	}

	return &CoinGecko{
		opts:    opts,
		logger:  logger.With().Str("component", "coingecko_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchSpot returns USD spot prices keyed by CoinGecko id. Unknown ids are
// omitted from the result rather than failing the call.
func (c *CoinGecko) FetchSpot(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	if len(ids) == 0 {
		return nil, errors.New("at least one id required")
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")

	endpoint := c.baseURL + "/simple/price?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
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
		return nil, fmt.Errorf("coingecko api error (%d)", resp.StatusCode)
	}

	var payload map[string]struct {
		USD *float64 `json:"usd"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode coingecko response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(payload))
	for id, entry := range payload {
		if entry.USD == nil {
			continue
		}
		prices[id] = decimal.NewFromFloat(*entry.USD)
	}

	if len(prices) == 0 {
		return nil, errors.New("coingecko returned no prices")
	}
	return prices, nil
}

var _ SpotFetcher = (*CoinGecko)(nil)
