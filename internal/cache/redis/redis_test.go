package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

func TestRedis(t *testing.T) {
	c := setupTestRedis(t)

	t.Run("signal bus pattern subscribe", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		bus := NewSignalBus(c)
		msgs, err := bus.Subscribe(ctx, "ch:*")
		require.NoError(t, err)

		require.NoError(t, bus.Publish(ctx, domain.ChannelScan, []byte(`{"count":3}`)))

		select {
		case got := <-msgs:
			assert.JSONEq(t, `{"count":3}`, string(got))
		case <-ctx.Done():
			t.Fatal("no message received")
		}
	})

	t.Run("rate limiter sliding window", func(t *testing.T) {
		ctx := context.Background()
		rl := NewRateLimiter(c)

		for i := 0; i < 3; i++ {
			ok, err := rl.Allow(ctx, "client-a", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok, "request %d", i)
		}
		ok, err := rl.Allow(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = rl.Allow(ctx, "client-b", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rate limiter counts requests sharing a timestamp", func(t *testing.T) {
		ctx := context.Background()
		rl := NewRateLimiter(c)
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		rl.now = func() time.Time { return fixed }

		for i := 0; i < 2; i++ {
			ok, err := rl.Allow(ctx, "client-c", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok, "request %d", i)
		}
		ok, err := rl.Allow(ctx, "client-c", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		keys, err := c.Underlying().Keys(ctx, rateLimitKey("client-c")+"*").Result()
		require.NoError(t, err)
		assert.Equal(t, []string{rateLimitKey("client-c")}, keys)
	})

	t.Run("lock is exclusive until released", func(t *testing.T) {
		ctx := context.Background()
		lm := NewLockManager(c)

		unlock, err := lm.Acquire(ctx, "watch", time.Minute)
		require.NoError(t, err)

		_, err = lm.Acquire(ctx, "watch", time.Minute)
		assert.True(t, errors.Is(err, domain.ErrLockHeld))

		unlock()
		unlock()

		again, err := lm.Acquire(ctx, "watch", time.Minute)
		require.NoError(t, err)
		again()
	})

	t.Run("scan cache", func(t *testing.T) {
		ctx := context.Background()
		cache := NewScanCache(c, time.Minute)

		_, err := cache.Latest(ctx)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		in := domain.ScanResult{
			ScanID:      "scan-1",
			Source:      domain.ListLive,
			GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Markets: []domain.ScoredMarket{{
				Market: domain.Market{
					ID:  "m1",
					Raw: domain.RawMarket{"token_id": json.Number("483310433366128830000000000000001")},
				},
				Score:       42.5,
				DepthSource: domain.DepthLive,
			}},
		}
		require.NoError(t, cache.SetLatest(ctx, in))

		out, err := cache.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "scan-1", out.ScanID)
		assert.True(t, in.GeneratedAt.Equal(out.GeneratedAt))
		require.Len(t, out.Markets, 1)
		assert.Equal(t, 42.5, out.Markets[0].Score)
		assert.Equal(t, json.Number("483310433366128830000000000000001"), out.Markets[0].Raw["token_id"])
	})
}
