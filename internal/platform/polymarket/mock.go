package polymarket

import (
	"strings"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

// mockMarkets is the canned listing served when the CLI is missing.
var mockMarkets = []domain.RawMarket{
	{
		"id":             "mock-btc-100k",
		"slug":           "will-bitcoin-hit-100k-by-year-end",
		"question":       "Will Bitcoin hit $100k by year-end?",
		"active":         true,
		"closed":         false,
		"volume_num":     1580000.0,
		"liquidity_num":  520000.0,
		"clob_token_ids": []any{"483310433366128830000000000000001"},
	},
	{
		"id":             "mock-fed-cut",
		"slug":           "will-the-fed-cut-rates-next-meeting",
		"question":       "Will the Fed cut rates at the next meeting?",
		"active":         true,
		"closed":         false,
		"volume_num":     910000.0,
		"liquidity_num":  260000.0,
		"clob_token_ids": []any{"483310433366128830000000000000002"},
	},
	{
		"id":             "mock-election",
		"slug":           "candidate-a-wins-general-election",
		"question":       "Will Candidate A win the general election?",
		"active":         true,
		"closed":         false,
		"volume_num":     2140000.0,
		"liquidity_num":  740000.0,
		"clob_token_ids": []any{"483310433366128830000000000000003"},
	},
}

var mockDepth = map[string][2]float64{
	"483310433366128830000000000000001": {0.57, 0.018},
	"483310433366128830000000000000002": {0.44, 0.026},
	"483310433366128830000000000000003": {0.62, 0.015},
}

// MockSource serves the fixed mock markets and depth table.
type MockSource struct{}

// NewMockSource returns the canned data set.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Markets returns copies of the mock markets whose question or slug contains
// search (case-insensitive), truncated to limit when limit > 0.
func (MockSource) Markets(search string, limit int) []domain.RawMarket {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]domain.RawMarket, 0, len(mockMarkets))
	for _, m := range mockMarkets {
		if needle != "" {
			q, _ := m["question"].(string)
			s, _ := m["slug"].(string)
			if !strings.Contains(strings.ToLower(q), needle) && !strings.Contains(strings.ToLower(s), needle) {
				continue
			}
		}
		out = append(out, m.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Depth looks up the mock quote for a token.
func (MockSource) Depth(tokenID string) (domain.DepthQuote, bool) {
	d, ok := mockDepth[tokenID]
	if !ok {
		return domain.DepthQuote{}, false
	}
	return domain.DepthQuote{
		Midpoint: domain.Float(d[0]),
		Spread:   domain.Float(d[1]),
		Source:   domain.DepthMock,
	}, true
}

var _ domain.MockData = MockSource{}
