package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

// DefaultMarketURLBase prefixes market slugs to build clickable links.
const DefaultMarketURLBase = "https://polymarket.com/event/"

// Config holds the scanner's process-wide, read-only settings.
type Config struct {
	// MaxEnrich caps how many markets get a live depth lookup per scan,
	// independent of the requested limit.
	MaxEnrich         int
	MockIfUnavailable bool
	MarketURLBase     string
}

// Scanner drives the normalize, enrich, score and sort pipeline.
type Scanner struct {
	lister   domain.MarketLister
	mock     domain.MockData
	resolver *Resolver
	cfg      Config
	now      func() time.Time
	logger   *slog.Logger
}

// NewScanner wires a Scanner. live and mock may be nil.
func NewScanner(lister domain.MarketLister, live domain.LiveDepth, mock domain.MockData, cfg Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MarketURLBase == "" {
		cfg.MarketURLBase = DefaultMarketURLBase
	}
	return &Scanner{
		lister:   lister,
		mock:     mock,
		resolver: NewResolver(live, mock, cfg.MockIfUnavailable, logger),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "scanner")),
	}
}

// WithClock overrides the timestamp source. Intended for tests.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// Scan runs one pass of the pipeline. Only a list failure aborts the scan;
// per-market depth failures degrade that market's quote.
func (s *Scanner) Scan(ctx context.Context, req domain.ScanRequest) (domain.ScanResult, error) {
	source, raws, err := s.listMarkets(ctx, req)
	if err != nil {
		return domain.ScanResult{}, err
	}

	markets := make([]domain.Market, 0, len(raws))
	for _, raw := range raws {
		m := Normalize(raw)
		if m.Tradable() {
			markets = append(markets, m)
		}
	}

	rows := make([]domain.ScoredMarket, 0, len(markets))
	for i, m := range markets {
		enrich := req.Enrich && i < s.cfg.MaxEnrich
		depth := s.resolver.Resolve(ctx, m, enrich)
		metrics := Score(m, depth)

		rows = append(rows, domain.ScoredMarket{
			Market:      m,
			Score:       metrics.Score,
			Spread:      metrics.Spread,
			Midpoint:    metrics.Midpoint,
			DepthSource: depth.Source,
			MarketURL:   s.marketURL(m.Slug),
		})
	}

	rows = SortMarkets(rows, req.SortBy, req.Order)
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}

	s.logger.DebugContext(ctx, "scan: completed",
		slog.String("source", string(source)),
		slog.Int("listed", len(raws)),
		slog.Int("tradable", len(markets)),
		slog.Int("returned", len(rows)),
	)

	return domain.ScanResult{
		Source:      source,
		GeneratedAt: s.now().UTC(),
		Markets:     rows,
	}, nil
}

func (s *Scanner) listMarkets(ctx context.Context, req domain.ScanRequest) (domain.ListSource, []domain.RawMarket, error) {
	raws, err := s.lister.ListMarkets(ctx, req.Limit, req.Search)
	if err == nil {
		return domain.ListLive, raws, nil
	}
	if !s.cfg.MockIfUnavailable || s.mock == nil || !errors.Is(err, domain.ErrSourceUnavailable) {
		return "", nil, fmt.Errorf("scan: list markets: %w", err)
	}

	s.logger.WarnContext(ctx, "scan: market source unavailable, using mock data",
		slog.String("error", err.Error()),
	)
	return domain.ListMock, s.mock.Markets(req.Search, req.Limit), nil
}

func (s *Scanner) marketURL(slug string) *string {
	if slug == "" {
		return nil
	}
	u := s.cfg.MarketURLBase + url.PathEscape(slug)
	return &u
}
