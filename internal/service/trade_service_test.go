package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/notify"
)

func TestTradeService_Validate(t *testing.T) {
	s := NewTradeService(&fakePlacer{}, nil, nil, TradeConfig{MaxAmount: 100}, slog.Default())

	tests := []struct {
		name    string
		in      TradeInput
		wantErr string
		want    domain.TradeRequest
	}{
		{"ok number", TradeInput{Token: " tok ", Side: "BUY", Amount: 5.0}, "", domain.TradeRequest{Token: "tok", Side: domain.SideBuy, Amount: 5}},
		{"ok string amount", TradeInput{Token: "tok", Side: "sell", Amount: "2.5"}, "", domain.TradeRequest{Token: "tok", Side: domain.SideSell, Amount: 2.5}},
		{"ok json number", TradeInput{Token: "tok", Side: "sell", Amount: json.Number("1")}, "", domain.TradeRequest{Token: "tok", Side: domain.SideSell, Amount: 1}},
		{"missing token", TradeInput{Side: "buy", Amount: 1.0}, "token is required", domain.TradeRequest{}},
		{"bad side", TradeInput{Token: "tok", Side: "hold", Amount: 1.0}, "side must be buy or sell", domain.TradeRequest{}},
		{"zero amount", TradeInput{Token: "tok", Side: "buy", Amount: 0.0}, "amount must be > 0", domain.TradeRequest{}},
		{"negative amount", TradeInput{Token: "tok", Side: "buy", Amount: -3.0}, "amount must be > 0", domain.TradeRequest{}},
		{"missing amount", TradeInput{Token: "tok", Side: "buy"}, "amount must be > 0", domain.TradeRequest{}},
		{"text amount", TradeInput{Token: "tok", Side: "buy", Amount: "lots"}, "amount must be > 0", domain.TradeRequest{}},
		{"bool amount", TradeInput{Token: "tok", Side: "buy", Amount: true}, "amount must be > 0", domain.TradeRequest{}},
		{"over cap", TradeInput{Token: "tok", Side: "buy", Amount: 101.0}, "amount must be <= 100", domain.TradeRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Validate(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTradeService_Simulate(t *testing.T) {
	placer := &fakePlacer{}
	s := NewTradeService(placer, nil, nil, TradeConfig{}, slog.Default())

	sim, err := s.Simulate(TradeInput{Token: "tok", Side: "buy", Amount: 3.0})
	require.NoError(t, err)
	assert.Equal(t, "polymarket clob market-order --token tok --side buy", sim.CommandText)
	assert.Len(t, sim.RiskChecks, 3)
	assert.Zero(t, placer.calls)

	_, err = s.Simulate(TradeInput{Token: "tok", Side: "buy"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestTradeService_ExecuteDisabled(t *testing.T) {
	placer := &fakePlacer{}
	s := NewTradeService(placer, nil, nil, TradeConfig{Enabled: false}, slog.Default())

	// Disabled wins even over invalid input.
	_, err := s.Execute(context.Background(), TradeInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTradingDisabled))
	assert.Contains(t, err.Error(), "ENABLE_TRADING=true")
	assert.Zero(t, placer.calls)
}

func TestTradeService_ExecuteValidationNeverReachesCLI(t *testing.T) {
	placer := &fakePlacer{}
	s := NewTradeService(placer, nil, nil, TradeConfig{Enabled: true}, slog.Default())

	_, err := s.Execute(context.Background(), TradeInput{Token: "tok", Side: "buy", Amount: -1.0})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Zero(t, placer.calls)
}

func TestTradeService_ExecuteSuccess(t *testing.T) {
	placer := &fakePlacer{result: map[string]any{"orderId": "o-1"}}
	bus := &fakeBus{}
	n := &fakeNotifier{}
	s := NewTradeService(placer, bus, n, TradeConfig{Enabled: true}, slog.Default())

	res, err := s.Execute(context.Background(), TradeInput{Token: "tok", Side: "sell", Amount: 4.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"orderId": "o-1"}, res)
	assert.Equal(t, 1, placer.calls)

	require.Len(t, bus.msgs, 1)
	assert.Equal(t, domain.ChannelTrade, bus.msgs[0].channel)
	var frame struct {
		Type    string            `json:"type"`
		Payload domain.TradeEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(bus.msgs[0].payload, &frame))
	assert.True(t, frame.Payload.OK)
	assert.NotEmpty(t, frame.Payload.ID)
	assert.Equal(t, domain.SideSell, frame.Payload.Request.Side)

	require.Len(t, n.sent, 1)
	assert.Equal(t, notify.EventTradeExecuted, n.sent[0].event)
}

func TestTradeService_ExecuteFailure(t *testing.T) {
	placer := &fakePlacer{err: domain.ErrCommandFailed}
	bus := &fakeBus{}
	n := &fakeNotifier{}
	s := NewTradeService(placer, bus, n, TradeConfig{Enabled: true}, slog.Default())

	_, err := s.Execute(context.Background(), TradeInput{Token: "tok", Side: "buy", Amount: 1.0})
	require.Error(t, err)
	assert.Equal(t, domain.CodeFailed, domain.ErrorCode(err, "EXEC_FAILED"))

	require.Len(t, bus.msgs, 1)
	var frame struct {
		Payload domain.TradeEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(bus.msgs[0].payload, &frame))
	assert.False(t, frame.Payload.OK)
	assert.Equal(t, domain.CodeFailed, frame.Payload.Code)

	require.Len(t, n.sent, 1)
	assert.Equal(t, notify.EventTradeFailed, n.sent[0].event)
}
