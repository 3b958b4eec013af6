package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyradar/internal/cache/memory"
	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/notify"
)

func newRadar(sc Scanner, p Pinger, bus domain.SignalBus, n Notifier) *RadarService {
	return NewRadarService(sc, p, bus, memory.NewScanCache(), n,
		RadarConfig{DefaultLimit: 20, MaxLimit: 100, MockIfUnavailable: true}, slog.Default())
}

func TestRadarService_ClampLimit(t *testing.T) {
	s := newRadar(&fakeScanner{}, fakePinger{}, nil, nil)
	assert.Equal(t, 20, s.ClampLimit(0))
	assert.Equal(t, 20, s.ClampLimit(-4))
	assert.Equal(t, 7, s.ClampLimit(7))
	assert.Equal(t, 100, s.ClampLimit(1000))
}

func TestRadarService_ScanStampsCachesAndPublishes(t *testing.T) {
	sc := &fakeScanner{result: domain.ScanResult{
		Source: domain.ListLive,
		Markets: []domain.ScoredMarket{
			{Market: domain.Market{ID: "top", Question: "Q?"}, Score: 80, DepthSource: domain.DepthLive},
			{Market: domain.Market{ID: "low"}, Score: 10, DepthSource: domain.DepthMarket},
		},
	}}
	bus := &fakeBus{}
	s := newRadar(sc, fakePinger{}, bus, nil)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	res, err := s.Scan(ctx, domain.ScanRequest{Search: "  fed  ", Limit: 500, Enrich: true})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ScanID)
	assert.Equal(t, "fed", sc.lastReq.Search)
	assert.Equal(t, 100, sc.lastReq.Limit)
	assert.True(t, sc.lastReq.Enrich)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.ScanID, latest.ScanID)

	require.Len(t, bus.msgs, 1)
	assert.Equal(t, domain.ChannelScan, bus.msgs[0].channel)

	var frame struct {
		Type    string             `json:"type"`
		Payload domain.ScanSummary `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(bus.msgs[0].payload, &frame))
	assert.Equal(t, "scan_completed", frame.Type)
	assert.Equal(t, res.ScanID, frame.Payload.ScanID)
	assert.Equal(t, 2, frame.Payload.Count)
	assert.Equal(t, "top", frame.Payload.TopID)
	assert.Equal(t, 1, frame.Payload.LiveDepth)
}

func TestRadarService_ScanFailureNotifies(t *testing.T) {
	sc := &fakeScanner{err: fmt.Errorf("scan: list markets: %w", domain.ErrTimeout)}
	bus := &fakeBus{}
	n := &fakeNotifier{}
	s := newRadar(sc, fakePinger{}, bus, n)

	_, err := s.Scan(context.Background(), domain.ScanRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.Empty(t, bus.msgs)
	require.Len(t, n.sent, 1)
	assert.Equal(t, notify.EventScanFailed, n.sent[0].event)

	_, err = s.Latest(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRadarService_Health(t *testing.T) {
	ctx := context.Background()

	h, err := newRadar(&fakeScanner{}, fakePinger{}, nil, nil).Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, Health{OK: true, CLI: CLILive}, h)

	h, err = newRadar(&fakeScanner{}, fakePinger{err: domain.ErrSourceUnavailable}, nil, nil).Health(ctx)
	require.NoError(t, err)
	assert.True(t, h.OK)
	assert.Equal(t, CLIUnavailable, h.CLI)
	require.NotNil(t, h.MockIfUnavailable)
	assert.True(t, *h.MockIfUnavailable)

	_, err = newRadar(&fakeScanner{}, fakePinger{err: domain.ErrCommandFailed}, nil, nil).Health(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.CodeFailed, domain.ErrorCode(err, "UNKNOWN"))
}
