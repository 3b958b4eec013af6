package memory

import (
	"context"
	"sync"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

// ScanCache holds the latest scan result in memory.
type ScanCache struct {
	mu     sync.RWMutex
	latest *domain.ScanResult
}

// NewScanCache creates an empty ScanCache.
func NewScanCache() *ScanCache {
	return &ScanCache{}
}

// SetLatest replaces the stored result.
func (c *ScanCache) SetLatest(_ context.Context, result domain.ScanResult) error {
	c.mu.Lock()
	c.latest = &result
	c.mu.Unlock()
	return nil
}

// Latest returns the stored result or domain.ErrNotFound.
func (c *ScanCache) Latest(_ context.Context) (domain.ScanResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	return *c.latest, nil
}

var _ domain.ScanCache = (*ScanCache)(nil)
