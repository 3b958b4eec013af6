package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "polymarket", cfg.CLI.Binary)
	assert.Equal(t, 20*time.Second, cfg.CLI.Timeout.Duration)
	assert.True(t, cfg.CLI.MockIfUnavailable)
	assert.Equal(t, 20, cfg.Scan.DefaultLimit)
	assert.Equal(t, 100, cfg.Scan.MaxLimit)
	assert.Equal(t, 8, cfg.Scan.MaxEnrich)
	assert.Equal(t, 8790, cfg.Server.Port)
	assert.False(t, cfg.Trading.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Scan, cfg.Scan)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.toml")
	content := `
mode = "watch"

[cli]
binary = "/opt/bin/polymarket"
timeout = "5s"

[scan]
max_enrich = 3

[watch]
interval = "30s"
search = "election"
order = "asc"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("POLYRADAR_MAX_ENRICH", "12")
	t.Setenv("ENABLE_TRADING", "true")
	t.Setenv("PORT", "9001")
	t.Setenv("POLYRADAR_TRADING_MAX_AMOUNT", "250.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "watch", cfg.Mode)
	assert.Equal(t, "/opt/bin/polymarket", cfg.CLI.Binary)
	assert.Equal(t, 5*time.Second, cfg.CLI.Timeout.Duration)
	assert.Equal(t, 12, cfg.Scan.MaxEnrich)
	assert.Equal(t, 30*time.Second, cfg.Watch.Interval.Duration)
	assert.Equal(t, "election", cfg.Watch.Search)
	assert.Equal(t, "asc", cfg.Watch.Order)
	assert.True(t, cfg.Trading.Enabled)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 250.5, cfg.Trading.MaxAmount)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedEnvWinsOverAlias(t *testing.T) {
	t.Setenv("POLYMARKET_BIN", "legacy-bin")
	t.Setenv("POLYRADAR_CLI_BINARY", "new-bin")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "new-bin", cfg.CLI.Binary)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = "), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.Mode = "trade" }, "unknown mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log_level"},
		{"empty binary", func(c *Config) { c.CLI.Binary = " " }, "cli: binary"},
		{"default above max", func(c *Config) { c.Scan.DefaultLimit = 500 }, "scan: default_limit"},
		{"negative max amount", func(c *Config) { c.Trading.MaxAmount = -5 }, "trading: max_amount"},
		{"negative enrich", func(c *Config) { c.Scan.MaxEnrich = -1 }, "scan: max_enrich"},
		{"rate limit without redis", func(c *Config) { c.RateLimit.Enabled = true }, "rate_limit: requires redis"},
		{"telegram half set", func(c *Config) { c.Notify.TelegramToken = "t" }, "telegram_token"},
		{"bad watch sort", func(c *Config) { c.Watch.SortBy = "age" }, "unknown sort_by"},
		{"bad watch order", func(c *Config) { c.Watch.Order = "up" }, "order must be asc or desc"},
		{"watch interval too short", func(c *Config) {
			c.Mode = "watch"
			c.Watch.Interval.Duration = 10 * time.Millisecond
		}, "watch: interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Notify.DiscordWebhookURL = "https://discord.example/hook"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Redis.Password)
	assert.Equal(t, "***", out.Notify.DiscordWebhookURL)
	assert.Empty(t, out.Notify.TelegramToken)

	out.Notify.Events[0] = "changed"
	assert.NotEqual(t, "changed", cfg.Notify.Events[0])
}
