package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

const (
	latestScanKey  = "polyradar:scan:latest"
	defaultScanTTL = 30 * time.Minute
)

// ScanCache stores the most recent scan result as a JSON string with a TTL.
type ScanCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewScanCache creates a ScanCache. A non-positive ttl uses 30 minutes.
func NewScanCache(c *Client, ttl time.Duration) *ScanCache {
	if ttl <= 0 {
		ttl = defaultScanTTL
	}
	return &ScanCache{rdb: c.Underlying(), ttl: ttl}
}

// SetLatest replaces the cached result.
func (sc *ScanCache) SetLatest(ctx context.Context, result domain.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal scan %s: %w", result.ScanID, err)
	}
	if err := sc.rdb.Set(ctx, latestScanKey, data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set latest scan: %w", err)
	}
	return nil
}

// Latest returns the cached result or domain.ErrNotFound.
func (sc *ScanCache) Latest(ctx context.Context) (domain.ScanResult, error) {
	data, err := sc.rdb.Get(ctx, latestScanKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanResult{}, domain.ErrNotFound
		}
		return domain.ScanResult{}, fmt.Errorf("redis: get latest scan: %w", err)
	}

	// Numbers stay json.Number so long token ids in raw records survive.
	var result domain.ScanResult
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return domain.ScanResult{}, fmt.Errorf("redis: unmarshal latest scan: %w", err)
	}
	return result, nil
}

var _ domain.ScanCache = (*ScanCache)(nil)
