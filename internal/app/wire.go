package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polyradar/internal/cache/memory"
	"github.com/alanyoungcy/polyradar/internal/cache/redis"
	"github.com/alanyoungcy/polyradar/internal/config"
	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/notify"
	"github.com/alanyoungcy/polyradar/internal/platform/polymarket"
	"github.com/alanyoungcy/polyradar/internal/scan"
	"github.com/alanyoungcy/polyradar/internal/service"
)

// Dependencies bundles what the modes need. It is constructed by Wire and torn
// down by the returned cleanup function.
type Dependencies struct {
	// Transport and state. RateLimiter and LockManager are nil without Redis.
	SignalBus   domain.SignalBus
	ScanCache   domain.ScanCache
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager

	// Market source
	CLI  *polymarket.CLIClient
	Mock *polymarket.MockSource

	// Services
	Radar  *service.RadarService
	Trades *service.TradeService

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.ScanCache = redis.NewScanCache(redisClient, cfg.Redis.ScanTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.LockManager = redis.NewLockManager(redisClient)
	} else {
		bus := memory.NewSignalBus()
		closers = append(closers, bus.Close)
		deps.SignalBus = bus
		deps.ScanCache = memory.NewScanCache()
	}

	// --- Market source ---
	runner := polymarket.NewExecRunner(polymarket.RunnerConfig{
		Binary:    cfg.CLI.Binary,
		Timeout:   cfg.CLI.Timeout.Duration,
		MaxOutput: cfg.CLI.MaxOutputBytes,
	})
	deps.CLI = polymarket.NewCLIClient(runner, runner.Binary())
	deps.Mock = polymarket.NewMockSource()

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Services ---
	scanner := scan.NewScanner(deps.CLI, deps.CLI, deps.Mock, scan.Config{
		MaxEnrich:         cfg.Scan.MaxEnrich,
		MockIfUnavailable: cfg.CLI.MockIfUnavailable,
		MarketURLBase:     cfg.Scan.MarketURLBase,
	}, logger)

	deps.Radar = service.NewRadarService(
		scanner, deps.CLI, deps.SignalBus, deps.ScanCache, deps.Notifier,
		service.RadarConfig{
			DefaultLimit:      cfg.Scan.DefaultLimit,
			MaxLimit:          cfg.Scan.MaxLimit,
			MockIfUnavailable: cfg.CLI.MockIfUnavailable,
		}, logger)

	deps.Trades = service.NewTradeService(
		deps.CLI, deps.SignalBus, deps.Notifier,
		service.TradeConfig{
			Enabled:   cfg.Trading.Enabled,
			MaxAmount: cfg.Trading.MaxAmount,
		}, logger)

	return deps, cleanup, nil
}
