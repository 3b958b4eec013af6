package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads an optional TOML configuration file at path, merges it on top of
// the built-in defaults, applies environment variable overrides, and returns
// the final Config. A missing file is not an error: the radar runs from
// defaults and environment alone. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYRADAR_* environment variables and
// overwrites the corresponding Config fields when a variable is set. The
// unprefixed names used by earlier deployments are honoured first so the
// prefixed form wins when both are present.
func applyEnvOverrides(cfg *Config) {
	// ── CLI ──
	setStr(&cfg.CLI.Binary, "POLYMARKET_BIN") // compatibility alias
	setStr(&cfg.CLI.Binary, "POLYRADAR_CLI_BINARY")
	setDuration(&cfg.CLI.Timeout, "POLYRADAR_CLI_TIMEOUT")
	setInt(&cfg.CLI.MaxOutputBytes, "POLYRADAR_CLI_MAX_OUTPUT_BYTES")
	setBool(&cfg.CLI.MockIfUnavailable, "POLYRADAR_MOCK_IF_UNAVAILABLE")

	// ── Scan ──
	setInt(&cfg.Scan.DefaultLimit, "POLYRADAR_DEFAULT_LIMIT")
	setInt(&cfg.Scan.MaxLimit, "POLYRADAR_MAX_LIMIT")
	setInt(&cfg.Scan.MaxEnrich, "POLYRADAR_MAX_ENRICH")
	setStr(&cfg.Scan.MarketURLBase, "POLYRADAR_MARKET_URL_BASE")

	// ── Trading ──
	setBool(&cfg.Trading.Enabled, "ENABLE_TRADING") // compatibility alias
	setBool(&cfg.Trading.Enabled, "POLYRADAR_TRADING_ENABLED")
	setFloat(&cfg.Trading.MaxAmount, "POLYRADAR_TRADING_MAX_AMOUNT")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "POLYRADAR_SERVER_ENABLED")
	setStr(&cfg.Server.Host, "POLYRADAR_SERVER_HOST")
	setInt(&cfg.Server.Port, "PORT") // compatibility alias
	setInt(&cfg.Server.Port, "POLYRADAR_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYRADAR_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.StaticDir, "POLYRADAR_SERVER_STATIC_DIR")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYRADAR_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYRADAR_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYRADAR_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYRADAR_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYRADAR_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYRADAR_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYRADAR_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.ScanTTL, "POLYRADAR_REDIS_SCAN_TTL")

	// ── Rate limit ──
	setBool(&cfg.RateLimit.Enabled, "POLYRADAR_RATE_LIMIT_ENABLED")
	setInt(&cfg.RateLimit.Requests, "POLYRADAR_RATE_LIMIT_REQUESTS")
	setDuration(&cfg.RateLimit.Window, "POLYRADAR_RATE_LIMIT_WINDOW")

	// ── Watch ──
	setDuration(&cfg.Watch.Interval, "POLYRADAR_WATCH_INTERVAL")
	setStr(&cfg.Watch.Search, "POLYRADAR_WATCH_SEARCH")
	setInt(&cfg.Watch.Limit, "POLYRADAR_WATCH_LIMIT")
	setBool(&cfg.Watch.Enrich, "POLYRADAR_WATCH_ENRICH")
	setStr(&cfg.Watch.SortBy, "POLYRADAR_WATCH_SORT_BY")
	setStr(&cfg.Watch.Order, "POLYRADAR_WATCH_ORDER")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYRADAR_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYRADAR_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYRADAR_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYRADAR_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYRADAR_MODE")
	setStr(&cfg.LogLevel, "POLYRADAR_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
