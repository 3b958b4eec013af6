package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyradar/internal/cache/memory"
	"github.com/alanyoungcy/polyradar/internal/domain"
)

type frame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

// signallingBus reports each completed Subscribe call.
type signallingBus struct {
	*memory.SignalBus
	subscribed chan string
}

func (b *signallingBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch, err := b.SignalBus.Subscribe(ctx, channel)
	b.subscribed <- channel
	return ch, err
}

func TestHub_RelaysBusEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := &signallingBus{SignalBus: memory.NewSignalBus(), subscribed: make(chan string, len(Channels))}
	hub := NewHub(bus, nil, Config{Mode: "Watch"})
	go hub.Run(ctx)

	for range Channels {
		select {
		case <-bus.subscribed:
		case <-time.After(2 * time.Second):
			t.Fatal("hub did not subscribe")
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration is handled by the hub loop before any later broadcast.
	status := readFrame(t, conn)
	assert.Equal(t, "radar_status", status.Type)
	assert.Equal(t, "watch", status.Payload["mode"])
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, domain.ChannelScan, []byte(`{"type":"scan_completed","payload":{"count":3}}`)))

	f := readFrame(t, conn)
	assert.Equal(t, "scan_completed", f.Type)
	assert.Equal(t, float64(3), f.Payload["count"])
}

func TestHub_HandleWSAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(memory.NewSignalBus(), nil, Config{Mode: "server"})

	stopped := make(chan error, 1)
	go func() { stopped <- hub.Run(ctx) }()
	cancel()
	select {
	case err := <-stopped:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	handled := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(handled)
		hub.HandleWS(w, r)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("HandleWS blocked after the hub stopped")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.Zero(t, hub.ClientCount())
}

func TestClient_Subscriptions(t *testing.T) {
	c := &client{subs: map[string]bool{domain.ChannelScan: true, domain.ChannelTrade: true}}

	c.handleSubscription(subscribeMsg{Action: "unsubscribe", Channels: []string{domain.ChannelScan}})
	assert.False(t, c.isSubscribed(domain.ChannelScan))
	assert.True(t, c.isSubscribed(domain.ChannelTrade))

	c.handleSubscription(subscribeMsg{Action: "subscribe", Channels: []string{domain.ChannelScan}})
	assert.True(t, c.isSubscribed(domain.ChannelScan))

	c.handleSubscription(subscribeMsg{Action: "noop", Channels: []string{"ch:other"}})
	assert.False(t, c.isSubscribed("ch:other"))
}
