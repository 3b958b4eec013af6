// Package memory provides in-process implementations of the radar's bus and
// scan cache, used when Redis is not configured.
package memory

import (
	"context"
	"path"
	"sync"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

const subscriberBuffer = 64

type subscriber struct {
	pattern string
	ch      chan []byte
}

// SignalBus is a domain.SignalBus that fans payloads out to subscribers in
// the same process. Slow subscribers lose messages instead of blocking
// publishers.
type SignalBus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewSignalBus creates an empty bus.
func NewSignalBus() *SignalBus {
	return &SignalBus{subs: make(map[*subscriber]struct{})}
}

// Publish delivers payload to every subscriber whose channel or glob pattern
// matches channel.
func (b *SignalBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if !matches(s.pattern, channel) {
			continue
		}
		msg := append([]byte(nil), payload...)
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber for channel, which may use the same glob
// syntax Redis PSUBSCRIBE accepts. The returned channel closes with ctx.
func (b *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	s := &subscriber{pattern: channel, ch: make(chan []byte, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s.ch, nil
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(s)
	}()
	return s.ch, nil
}

// Close closes every subscription. Later subscriptions are closed on arrival.
func (b *SignalBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		close(s.ch)
	}
}

func (b *SignalBus) remove(s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}

func matches(pattern, channel string) bool {
	if pattern == channel {
		return true
	}
	ok, err := path.Match(pattern, channel)
	return err == nil && ok
}

var _ domain.SignalBus = (*SignalBus)(nil)
