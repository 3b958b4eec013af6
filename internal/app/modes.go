package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/server"
	"github.com/alanyoungcy/polyradar/internal/server/handler"
	"github.com/alanyoungcy/polyradar/internal/server/ws"
)

const (
	watchLockKey    = "watch:tick"
	shutdownTimeout = 5 * time.Second
)

// ServerMode serves the HTTP API and WebSocket feed until ctx is cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, nil)
	return g.Wait()
}

// ScanMode runs one scan with the watch parameters and writes the result as
// JSON to stdout.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	result, err := deps.Radar.Scan(ctx, a.watchRequest())
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("scan mode: write result: %w", err)
	}
	return nil
}

// WatchMode rescans on every watch interval and on demand through
// POST /api/scan/trigger. The HTTP server runs alongside when enabled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", a.cfg.Watch.Interval.Duration),
		slog.String("search", a.cfg.Watch.Search),
	)

	g, ctx := errgroup.WithContext(ctx)

	triggerCh := make(chan struct{}, 1)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, triggerCh)
	}

	g.Go(func() error {
		return a.runWatchLoop(ctx, deps, triggerCh)
	})

	return g.Wait()
}

func (a *App) runWatchLoop(ctx context.Context, deps *Dependencies, triggerCh <-chan struct{}) error {
	interval := a.cfg.Watch.Interval.Duration
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.watchTick(ctx, deps, interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.watchTick(ctx, deps, interval)
		case <-triggerCh:
			// A manual trigger is a local request and bypasses the tick lock.
			a.logger.InfoContext(ctx, "watch: manual trigger")
			_ = a.watchScan(ctx, deps)
		}
	}
}

// watchTick runs the scheduled scan. With Redis wired, radars sharing it
// take a lock that is left to expire after ttl, so each interval is scanned
// by one instance. A failed scan releases the lock for the next instance.
func (a *App) watchTick(ctx context.Context, deps *Dependencies, ttl time.Duration) {
	if deps.LockManager == nil {
		_ = a.watchScan(ctx, deps)
		return
	}

	unlock, err := deps.LockManager.Acquire(ctx, watchLockKey, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			a.logger.DebugContext(ctx, "watch: tick owned by another instance")
			return
		}
		a.logger.WarnContext(ctx, "watch: acquire lock failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if err := a.watchScan(ctx, deps); err != nil {
		unlock()
	}
}

func (a *App) watchScan(ctx context.Context, deps *Dependencies) error {
	result, err := deps.Radar.Scan(ctx, a.watchRequest())
	if err != nil {
		// RadarService has already logged and notified.
		return err
	}

	summary := result.Summary()
	a.logger.InfoContext(ctx, "watch: tick complete",
		slog.String("scan_id", summary.ScanID),
		slog.Int("count", summary.Count),
		slog.String("top_id", summary.TopID),
		slog.Float64("top_score", summary.TopScore),
	)
	return nil
}

func (a *App) watchRequest() domain.ScanRequest {
	return domain.ScanRequest{
		Search: a.cfg.Watch.Search,
		Limit:  a.cfg.Watch.Limit,
		Enrich: a.cfg.Watch.Enrich,
		SortBy: a.cfg.Watch.SortBy,
		Order:  a.cfg.Watch.Order,
	}
}

// startHTTPServer registers the API server, its shutdown hook and the
// WebSocket hub on g. triggerCh is nil outside watch mode.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, triggerCh chan<- struct{}) {
	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: a.startedAt,
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(deps.Radar, a.logger),
		Config: handler.NewConfigHandler(handler.ConfigView{
			TradingEnabled:    deps.Trades.Enabled(),
			DefaultLimit:      a.cfg.Scan.DefaultLimit,
			MaxEnrich:         a.cfg.Scan.MaxEnrich,
			Binary:            deps.CLI.Binary(),
			MockIfUnavailable: a.cfg.CLI.MockIfUnavailable,
		}),
		Scan:   handler.NewScanHandler(deps.Radar, a.logger),
		Trade:  handler.NewTradeHandler(deps.Trades, a.logger),
		Status: handler.NewStatusHandler(a.cfg.Mode, a.startedAt),
	}
	if triggerCh != nil {
		handlers.Trigger = handler.NewTriggerHandler(triggerCh, a.logger)
	}

	srv := server.NewServer(server.Config{
		Host:        a.cfg.Server.Host,
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		StaticDir:   a.cfg.Server.StaticDir,
		RateLimiter: a.rateLimiter(deps),
		RateLimit:   a.cfg.RateLimit.Requests,
		RateWindow:  a.cfg.RateLimit.Window.Duration,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

func (a *App) rateLimiter(deps *Dependencies) domain.RateLimiter {
	if !a.cfg.RateLimit.Enabled {
		return nil
	}
	return deps.RateLimiter
}
