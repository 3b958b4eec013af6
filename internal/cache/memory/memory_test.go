package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestSignalBus_RoutesByChannelAndPattern(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewSignalBus()
	scans, err := bus.Subscribe(ctx, domain.ChannelScan)
	require.NoError(t, err)
	all, err := bus.Subscribe(ctx, "ch:*")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, domain.ChannelTrade, []byte("trade")))
	require.NoError(t, bus.Publish(ctx, domain.ChannelScan, []byte("scan")))

	assert.Equal(t, "scan", string(receive(t, scans)))
	assert.Equal(t, "trade", string(receive(t, all)))
	assert.Equal(t, "scan", string(receive(t, all)))
}

func TestSignalBus_CancelClosesSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := NewSignalBus()

	ch, err := bus.Subscribe(ctx, domain.ChannelScan)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Publishing after the subscriber left must not panic.
	assert.NoError(t, bus.Publish(context.Background(), domain.ChannelScan, []byte("x")))
}

func TestSignalBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewSignalBus()
	_, err := bus.Subscribe(ctx, domain.ChannelScan)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			_ = bus.Publish(ctx, domain.ChannelScan, []byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestSignalBus_Close(t *testing.T) {
	bus := NewSignalBus()
	ch, err := bus.Subscribe(context.Background(), domain.ChannelScan)
	require.NoError(t, err)

	bus.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late, err := bus.Subscribe(context.Background(), domain.ChannelScan)
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}

func TestScanCache(t *testing.T) {
	ctx := context.Background()
	c := NewScanCache()

	_, err := c.Latest(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, c.SetLatest(ctx, domain.ScanResult{ScanID: "a"}))
	require.NoError(t, c.SetLatest(ctx, domain.ScanResult{ScanID: "b"}))

	got, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ScanID)
}
