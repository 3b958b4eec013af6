// Package config defines the top-level configuration for polyradar and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from an
// optional TOML file and then overridden by POLYRADAR_* environment variables.
type Config struct {
	CLI       CLIConfig       `toml:"cli"`
	Scan      ScanConfig      `toml:"scan"`
	Trading   TradingConfig   `toml:"trading"`
	Server    ServerConfig    `toml:"server"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Watch     WatchConfig     `toml:"watch"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// CLIConfig describes how the polymarket CLI is invoked.
type CLIConfig struct {
	Binary            string   `toml:"binary"`
	Timeout           duration `toml:"timeout"`
	MaxOutputBytes    int      `toml:"max_output_bytes"`
	MockIfUnavailable bool     `toml:"mock_if_unavailable"`
}

// ScanConfig holds scan defaults and caps.
type ScanConfig struct {
	DefaultLimit  int    `toml:"default_limit"`
	MaxLimit      int    `toml:"max_limit"`
	MaxEnrich     int    `toml:"max_enrich"`
	MarketURLBase string `toml:"market_url_base"`
}

// TradingConfig gates order execution through the CLI.
type TradingConfig struct {
	Enabled bool `toml:"enabled"`

	// MaxAmount rejects orders above this size. Zero means no cap.
	MaxAmount float64 `toml:"max_amount"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	StaticDir   string   `toml:"static_dir"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; without it
// events stay in-process and API rate limiting is off.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	ScanTTL    duration `toml:"scan_ttl"`
}

// RateLimitConfig bounds per-client API traffic. Requires Redis.
type RateLimitConfig struct {
	Enabled  bool     `toml:"enabled"`
	Requests int      `toml:"requests"`
	Window   duration `toml:"window"`
}

// WatchConfig drives periodic scans in watch mode.
type WatchConfig struct {
	Interval duration `toml:"interval"`
	Search   string   `toml:"search"`
	Limit    int      `toml:"limit"`
	Enrich   bool     `toml:"enrich"`
	SortBy   string   `toml:"sort_by"`
	Order    string   `toml:"order"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the values the radar ships with.
func Defaults() Config {
	return Config{
		CLI: CLIConfig{
			Binary:            "polymarket",
			Timeout:           duration{20 * time.Second},
			MaxOutputBytes:    20 << 20,
			MockIfUnavailable: true,
		},
		Scan: ScanConfig{
			DefaultLimit:  20,
			MaxLimit:      100,
			MaxEnrich:     8,
			MarketURLBase: "https://polymarket.com/event/",
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8790,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
			ScanTTL:    duration{30 * time.Minute},
		},
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   duration{time.Minute},
		},
		Watch: WatchConfig{
			Interval: duration{time.Minute},
			Limit:    20,
			Enrich:   true,
			SortBy:   "score",
			Order:    "desc",
		},
		Notify: NotifyConfig{
			Events: []string{"trade_executed", "trade_failed", "scan_failed"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"server": true,
	"scan":   true,
	"watch":  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validSortKeys = map[string]bool{
	"score":     true,
	"liquidity": true,
	"volume":    true,
	"spread":    true,
	"midpoint":  true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, scan, watch)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// CLI
	if strings.TrimSpace(c.CLI.Binary) == "" {
		errs = append(errs, "cli: binary must not be empty")
	}
	if c.CLI.Timeout.Duration <= 0 {
		errs = append(errs, "cli: timeout must be > 0")
	}
	if c.CLI.MaxOutputBytes < 1 {
		errs = append(errs, "cli: max_output_bytes must be >= 1")
	}

	// Scan
	if c.Scan.MaxLimit < 1 {
		errs = append(errs, "scan: max_limit must be >= 1")
	}
	if c.Scan.DefaultLimit < 1 || c.Scan.DefaultLimit > c.Scan.MaxLimit {
		errs = append(errs, fmt.Sprintf("scan: default_limit must be 1-%d, got %d", c.Scan.MaxLimit, c.Scan.DefaultLimit))
	}
	if c.Scan.MaxEnrich < 0 {
		errs = append(errs, "scan: max_enrich must be >= 0")
	}

	if c.Trading.MaxAmount < 0 {
		errs = append(errs, "trading: max_amount must be >= 0")
	}

	// Server
	if c.Server.Enabled || strings.EqualFold(c.Mode, "server") {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Rate limiting needs the shared counter store.
	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			errs = append(errs, "rate_limit: requires redis.enabled")
		}
		if c.RateLimit.Requests < 1 {
			errs = append(errs, "rate_limit: requests must be >= 1")
		}
		if c.RateLimit.Window.Duration <= 0 {
			errs = append(errs, "rate_limit: window must be > 0")
		}
	}

	// Watch
	if strings.EqualFold(c.Mode, "watch") {
		if c.Watch.Interval.Duration < time.Second {
			errs = append(errs, "watch: interval must be >= 1s")
		}
		if c.Watch.Limit < 1 || c.Watch.Limit > c.Scan.MaxLimit {
			errs = append(errs, fmt.Sprintf("watch: limit must be 1-%d, got %d", c.Scan.MaxLimit, c.Watch.Limit))
		}
	}
	if c.Watch.SortBy != "" && !validSortKeys[strings.ToLower(c.Watch.SortBy)] {
		errs = append(errs, fmt.Sprintf("watch: unknown sort_by %q", c.Watch.SortBy))
	}
	if o := strings.ToLower(c.Watch.Order); o != "" && o != "asc" && o != "desc" {
		errs = append(errs, fmt.Sprintf("watch: order must be asc or desc, got %q", c.Watch.Order))
	}

	// Notify: telegram needs both token and chat.
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
