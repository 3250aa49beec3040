package fetcher

import (
	"context"

	"github.com/shopspring/decimal"
)

// IndexFetcher retrieves the latest level of a volatility index.
type IndexFetcher interface {
	FetchIndex(ctx context.Context, symbol string) (decimal.Decimal, string, error)
}

// SeriesFetcher retrieves an oldest-first daily close series.
type SeriesFetcher interface {
	FetchCloses(ctx context.Context, symbol string, days int) ([]decimal.Decimal, error)
}

// SpotFetcher retrieves spot prices for the focus-asset list.
type SpotFetcher interface {
	FetchSpot(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}
