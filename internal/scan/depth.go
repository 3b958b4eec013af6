package scan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

var (
	bestBidKeys       = []string{"bestBid", "best_bid"}
	bestAskKeys       = []string{"bestAsk", "best_ask"}
	lastTradeKeys     = []string{"lastTradePrice", "last_trade_price"}
	outcomePricesKeys = []string{"outcomePrices", "outcome_prices"}
	spreadKeys        = []string{"spread"}
)

// Resolver obtains depth quotes for markets. The live source is consulted
// first; mock data only stands in when the live source is categorically
// unavailable and MockIfUnavailable is set.
type Resolver struct {
	live              domain.LiveDepth
	mock              domain.MockData
	mockIfUnavailable bool
	logger            *slog.Logger
}

// NewResolver creates a Resolver. mock may be nil, which disables tier 2.
func NewResolver(live domain.LiveDepth, mock domain.MockData, mockIfUnavailable bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		live:              live,
		mock:              mock,
		mockIfUnavailable: mockIfUnavailable && mock != nil,
		logger:            logger,
	}
}

// Live runs tiers 1 and 2 for a token. Midpoint and spread are requested
// concurrently. An empty token id resolves to "none" without any call.
func (r *Resolver) Live(ctx context.Context, tokenID string) domain.DepthQuote {
	if tokenID == "" || r.live == nil {
		return domain.NoDepth(domain.DepthNone)
	}

	var mid, spread *float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := r.live.Midpoint(gctx, tokenID)
		mid = v
		return err
	})
	g.Go(func() error {
		v, err := r.live.Spread(gctx, tokenID)
		spread = v
		return err
	})

	if err := g.Wait(); err != nil {
		if !r.mockIfUnavailable || !errors.Is(err, domain.ErrSourceUnavailable) {
			r.logger.DebugContext(ctx, "scan: live depth failed",
				slog.String("token_id", tokenID),
				slog.String("error", err.Error()),
			)
			return domain.NoDepth(domain.DepthUnavailable)
		}
		q, ok := r.mock.Depth(tokenID)
		if !ok {
			return domain.NoDepth(domain.DepthNone)
		}
		q.Source = domain.DepthMock
		return q
	}

	return domain.DepthQuote{
		Midpoint: finite(mid),
		Spread:   finite(spread),
		Source:   domain.DepthLive,
	}
}

// Resolve produces the final quote for m: tiers 1-2 when enrich is set and
// the market has a token id, then tier 3 fills whatever is still missing.
func (r *Resolver) Resolve(ctx context.Context, m domain.Market, enrich bool) domain.DepthQuote {
	primary := domain.NoDepth(domain.DepthNone)
	if enrich && m.TokenID != nil {
		primary = r.Live(ctx, *m.TokenID)
	}
	return MergeDepth(primary, MarketDepth(m))
}

// MarketDepth derives a quote purely from fields embedded in the raw record.
func MarketDepth(m domain.Market) domain.DepthQuote {
	raw := m.Raw
	q := domain.NoDepth(domain.DepthNone)

	bid, hasBid := rawNumber(raw, bestBidKeys...)
	ask, hasAsk := rawNumber(raw, bestAskKeys...)
	bothSides := hasBid && hasAsk && bid >= 0 && ask >= 0

	switch {
	case bothSides:
		q.Midpoint = domain.Float((bid + ask) / 2)
	default:
		if last, ok := rawNumber(raw, lastTradeKeys...); ok {
			q.Midpoint = domain.Float(last)
		} else if first, ok := firstOutcomePrice(raw); ok {
			q.Midpoint = domain.Float(first)
		}
	}

	if s, ok := rawNumber(raw, spreadKeys...); ok && s >= 0 {
		q.Spread = domain.Float(s)
	} else if bothSides && ask >= bid {
		q.Spread = domain.Float(ask - bid)
	}

	if !q.Empty() {
		q.Source = domain.DepthMarket
	}
	return q
}

// MergeDepth fills the nil fields of primary from fallback. Fields already
// set on primary are never overwritten. A live primary that contributed any
// field keeps its "live" provenance.
func MergeDepth(primary, fallback domain.DepthQuote) domain.DepthQuote {
	out := domain.DepthQuote{Midpoint: primary.Midpoint, Spread: primary.Spread}
	primaryContributed := !primary.Empty()

	fallbackContributed := false
	if out.Midpoint == nil && fallback.Midpoint != nil {
		out.Midpoint = fallback.Midpoint
		fallbackContributed = true
	}
	if out.Spread == nil && fallback.Spread != nil {
		out.Spread = fallback.Spread
		fallbackContributed = true
	}

	switch {
	case primaryContributed:
		out.Source = primary.Source
	case fallbackContributed:
		out.Source = fallback.Source
	case primary.Source == domain.DepthUnavailable:
		out.Source = domain.DepthUnavailable
	default:
		out.Source = domain.DepthNone
	}
	return out
}

func rawNumber(raw domain.RawMarket, keys ...string) (float64, bool) {
	v, ok := raw.First(keys...)
	if !ok {
		return 0, false
	}
	return domain.ParseNumber(v)
}

// firstOutcomePrice reads the first entry of the outcome price list, which
// upstream encodes as a JSON array inside a string.
func firstOutcomePrice(raw domain.RawMarket) (float64, bool) {
	v, ok := raw.First(outcomePricesKeys...)
	if !ok {
		return 0, false
	}

	var list []any
	switch x := v.(type) {
	case []any:
		list = x
	case string:
		dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(x)))
		dec.UseNumber()
		if err := dec.Decode(&list); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if len(list) == 0 {
		return 0, false
	}
	return domain.ParseNumber(list[0])
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return domain.Float(*v)
}
