// Package polymarket talks to the polymarket trading CLI and provides the
// canned data set used when the CLI is not installed.
package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

// Payload keys probed on CLI responses, first present wins.
var (
	listEnvelopeKeys = []string{"data", "markets", "items"}
	midpointKeys     = []string{"midpoint", "mid", "price"}
	spreadKeys       = []string{"spread", "width"}
)

// CLIClient exposes the CLI subcommands the radar needs.
type CLIClient struct {
	runner Runner
	binary string
}

// NewCLIClient creates a CLIClient. binary is only used when rendering
// commands for display.
func NewCLIClient(runner Runner, binary string) *CLIClient {
	if binary == "" {
		binary = "polymarket"
	}
	return &CLIClient{runner: runner, binary: binary}
}

// Binary returns the executable the client renders commands for.
func (c *CLIClient) Binary() string {
	return c.binary
}

// ListMarkets searches when search is non-empty, otherwise browses open
// markets.
func (c *CLIClient) ListMarkets(ctx context.Context, limit int, search string) ([]domain.RawMarket, error) {
	args := []string{"markets", "list", "--limit", strconv.Itoa(limit), "--active", "true", "--closed", "false"}
	if search != "" {
		args = []string{"markets", "search", search, "--limit", strconv.Itoa(limit)}
	}

	payload, err := c.runJSON(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("polymarket: list markets: %w", err)
	}
	return unwrapMarkets(payload), nil
}

// Midpoint returns the CLOB midpoint for a token, or nil when the response
// carries no usable number.
func (c *CLIClient) Midpoint(ctx context.Context, tokenID string) (*float64, error) {
	return c.number(ctx, midpointKeys, "clob", "midpoint", tokenID)
}

// Spread returns the CLOB bid/ask spread for a token, or nil when the
// response carries no usable number.
func (c *CLIClient) Spread(ctx context.Context, tokenID string) (*float64, error) {
	return c.number(ctx, spreadKeys, "clob", "spread", tokenID)
}

// MarketOrder places a market order through the CLI and returns its raw JSON
// answer.
func (c *CLIClient) MarketOrder(ctx context.Context, req domain.TradeRequest) (any, error) {
	payload, err := c.runJSON(ctx, marketOrderArgs(req)...)
	if err != nil {
		return nil, fmt.Errorf("polymarket: market order: %w", err)
	}
	return payload, nil
}

// BuildMarketOrderCommand renders the argv that MarketOrder would run.
func (c *CLIClient) BuildMarketOrderCommand(req domain.TradeRequest) []string {
	return append([]string{c.binary}, marketOrderArgs(req)...)
}

// Ping issues the cheapest possible listing to probe CLI availability.
func (c *CLIClient) Ping(ctx context.Context) error {
	if _, err := c.runJSON(ctx, "markets", "list", "--limit", "1"); err != nil {
		return fmt.Errorf("polymarket: ping: %w", err)
	}
	return nil
}

func marketOrderArgs(req domain.TradeRequest) []string {
	return []string{
		"clob", "market-order",
		"--token", req.Token,
		"--side", string(req.Side),
		"--amount", strconv.FormatFloat(req.Amount, 'f', -1, 64),
	}
}

func (c *CLIClient) number(ctx context.Context, keys []string, args ...string) (*float64, error) {
	payload, err := c.runJSON(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("polymarket: %s %s: %w", args[0], args[1], err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		if f, ok := domain.ParseNumber(payload); ok {
			return &f, nil
		}
		return nil, nil
	}
	v, _ := domain.RawMarket(obj).First(keys...)
	f, ok := domain.ParseNumber(v)
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// runJSON runs the CLI and decodes stdout. Empty output decodes to an empty
// object; anything unparsable is a malformed response.
func (c *CLIClient) runJSON(ctx context.Context, args ...string) (any, error) {
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	text := bytes.TrimSpace(out)
	if len(text) == 0 {
		return map[string]any{}, nil
	}

	var payload any
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", domain.ErrMalformedResponse)
	}
	return payload, nil
}

// unwrapMarkets accepts a bare array or an envelope object. Non-object
// entries are dropped.
func unwrapMarkets(payload any) []domain.RawMarket {
	var items []any
	switch x := payload.(type) {
	case []any:
		items = x
	case map[string]any:
		for _, k := range listEnvelopeKeys {
			if arr, ok := x[k].([]any); ok {
				items = arr
				break
			}
		}
	}

	out := make([]domain.RawMarket, 0, len(items))
	for _, it := range items {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, domain.RawMarket(obj))
		}
	}
	return out
}

// Compile-time interface checks.
var (
	_ domain.MarketLister = (*CLIClient)(nil)
	_ domain.LiveDepth    = (*CLIClient)(nil)
	_ Runner              = (*ExecRunner)(nil)
)
