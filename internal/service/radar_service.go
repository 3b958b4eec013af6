package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/notify"
)

// Health states reported for the CLI.
const (
	CLILive        = "live"
	CLIUnavailable = "unavailable"
)

// Scanner runs one scan pass.
type Scanner interface {
	Scan(ctx context.Context, req domain.ScanRequest) (domain.ScanResult, error)
}

// Pinger probes the market source.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier forwards operator alerts.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// RadarConfig holds scan request defaults.
type RadarConfig struct {
	DefaultLimit      int
	MaxLimit          int
	MockIfUnavailable bool
}

// Health is the CLI availability report.
type Health struct {
	OK                bool   `json:"ok"`
	CLI               string `json:"cli"`
	MockIfUnavailable *bool  `json:"mockIfUnavailable,omitempty"`
}

// RadarService runs scans on behalf of the HTTP layer and the watch loop. It
// stamps each result with an id, caches it and broadcasts a summary.
type RadarService struct {
	scanner  Scanner
	pinger   Pinger
	bus      domain.SignalBus
	cache    domain.ScanCache
	notifier Notifier
	cfg      RadarConfig
	logger   *slog.Logger
}

// NewRadarService creates a RadarService. bus, cache and notifier may be nil.
func NewRadarService(
	scanner Scanner,
	pinger Pinger,
	bus domain.SignalBus,
	cache domain.ScanCache,
	notifier Notifier,
	cfg RadarConfig,
	logger *slog.Logger,
) *RadarService {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(20, cfg.MaxLimit)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RadarService{
		scanner:  scanner,
		pinger:   pinger,
		bus:      bus,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// ClampLimit applies the default to non-positive limits and caps the rest at
// the configured maximum.
func (s *RadarService) ClampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return min(limit, s.cfg.MaxLimit)
}

// Scan runs a scan and returns the ranked result.
func (s *RadarService) Scan(ctx context.Context, req domain.ScanRequest) (domain.ScanResult, error) {
	req.Search = strings.TrimSpace(req.Search)
	req.Limit = s.ClampLimit(req.Limit)

	start := time.Now()
	result, err := s.scanner.Scan(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "radar_service: scan failed",
			slog.String("search", req.Search),
			slog.String("code", domain.ErrorCode(err, "SCAN_FAILED")),
			slog.String("error", err.Error()),
		)
		s.notify(ctx, notify.EventScanFailed, "Scan failed",
			fmt.Sprintf("search=%q: %v", req.Search, err))
		return domain.ScanResult{}, fmt.Errorf("radar_service: scan: %w", err)
	}

	result.ScanID = uuid.NewString()
	summary := result.Summary()

	s.logger.InfoContext(ctx, "radar_service: scan completed",
		slog.String("scan_id", result.ScanID),
		slog.String("source", string(result.Source)),
		slog.String("search", req.Search),
		slog.Int("count", summary.Count),
		slog.Int("live_depth", summary.LiveDepth),
		slog.Float64("top_score", summary.TopScore),
		slog.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil {
		if cacheErr := s.cache.SetLatest(ctx, result); cacheErr != nil {
			s.logger.WarnContext(ctx, "radar_service: cache latest scan failed",
				slog.String("scan_id", result.ScanID),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	s.publish(ctx, summary)

	return result, nil
}

// Latest returns the most recent successful scan, or domain.ErrNotFound.
func (s *RadarService) Latest(ctx context.Context) (domain.ScanResult, error) {
	if s.cache == nil {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	result, err := s.cache.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ScanResult{}, err
		}
		return domain.ScanResult{}, fmt.Errorf("radar_service: latest: %w", err)
	}
	return result, nil
}

// Health pings the CLI. A missing CLI is healthy (the radar can serve mock
// data); any other failure is returned.
func (s *RadarService) Health(ctx context.Context) (Health, error) {
	err := s.pinger.Ping(ctx)
	switch {
	case err == nil:
		return Health{OK: true, CLI: CLILive}, nil
	case errors.Is(err, domain.ErrSourceUnavailable):
		mock := s.cfg.MockIfUnavailable
		return Health{OK: true, CLI: CLIUnavailable, MockIfUnavailable: &mock}, nil
	default:
		return Health{}, fmt.Errorf("radar_service: health: %w", err)
	}
}

func (s *RadarService) publish(ctx context.Context, summary domain.ScanSummary) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(envelope{Type: "scan_completed", Payload: summary})
	if err != nil {
		return
	}
	if pubErr := s.bus.Publish(ctx, domain.ChannelScan, payload); pubErr != nil {
		s.logger.WarnContext(ctx, "radar_service: publish scan summary failed",
			slog.String("scan_id", summary.ScanID),
			slog.String("error", pubErr.Error()),
		)
	}
}

func (s *RadarService) notify(ctx context.Context, event, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event, title, message); err != nil {
		s.logger.WarnContext(ctx, "radar_service: notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// envelope is the JSON frame published on the bus and relayed to
// WebSocket clients.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
