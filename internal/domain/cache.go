package domain

import (
	"context"
	"time"
)

// Bus channels carrying radar events.
const (
	ChannelScan  = "ch:scan"
	ChannelTrade = "ch:trade"
)

// SignalBus is a fire-and-forget pub/sub transport.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter provides shared request rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ScanCache keeps the most recent scan result. Latest returns ErrNotFound
// before the first scan is stored.
type ScanCache interface {
	SetLatest(ctx context.Context, result ScanResult) error
	Latest(ctx context.Context) (ScanResult, error)
}

// LockManager hands out short-lived exclusive locks. Acquire returns
// ErrLockHeld when another owner has the key.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
