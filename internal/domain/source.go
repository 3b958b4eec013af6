package domain

import "context"

// MarketLister fetches raw listings. An empty search browses active markets.
type MarketLister interface {
	ListMarkets(ctx context.Context, limit int, search string) ([]RawMarket, error)
}

// LiveDepth queries live order-book figures for a token. A nil value with a
// nil error means the source answered without a usable number.
type LiveDepth interface {
	Midpoint(ctx context.Context, tokenID string) (*float64, error)
	Spread(ctx context.Context, tokenID string) (*float64, error)
}

// MockData supplies canned listings and depth used when the CLI is missing.
type MockData interface {
	Markets(search string, limit int) []RawMarket
	Depth(tokenID string) (DepthQuote, bool)
}
