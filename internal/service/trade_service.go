package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/notify"
)

// riskChecks accompany every simulated order.
var riskChecks = []string{
	"Confirm token ID matches desired market outcome.",
	"Check current spread and midpoint before submitting.",
	"Use small amount first to validate fill behavior.",
}

// OrderPlacer places market orders through the CLI.
type OrderPlacer interface {
	MarketOrder(ctx context.Context, req domain.TradeRequest) (any, error)
	BuildMarketOrderCommand(req domain.TradeRequest) []string
}

// TradeInput is an unvalidated order as received from a client. Amount is
// left untyped so numeric strings are accepted.
type TradeInput struct {
	Token  string `json:"token"`
	Side   string `json:"side"`
	Amount any    `json:"amount"`
}

// TradeConfig gates execution.
type TradeConfig struct {
	Enabled   bool
	MaxAmount float64
}

// TradeService validates orders, renders dry runs and, when enabled, executes
// them through the CLI.
type TradeService struct {
	placer   OrderPlacer
	bus      domain.SignalBus
	notifier Notifier
	cfg      TradeConfig
	now      func() time.Time
	logger   *slog.Logger
}

// NewTradeService creates a TradeService. bus and notifier may be nil.
func NewTradeService(
	placer OrderPlacer,
	bus domain.SignalBus,
	notifier Notifier,
	cfg TradeConfig,
	logger *slog.Logger,
) *TradeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeService{
		placer:   placer,
		bus:      bus,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// Enabled reports whether Execute may reach the CLI.
func (s *TradeService) Enabled() bool {
	return s.cfg.Enabled
}

// Validate turns client input into a TradeRequest. Every failure is a
// *domain.ValidationError.
func (s *TradeService) Validate(in TradeInput) (domain.TradeRequest, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return domain.TradeRequest{}, &domain.ValidationError{Msg: "token is required"}
	}

	side := domain.TradeSide(strings.ToLower(strings.TrimSpace(in.Side)))
	if side != domain.SideBuy && side != domain.SideSell {
		return domain.TradeRequest{}, &domain.ValidationError{Msg: "side must be buy or sell"}
	}

	amount, ok := domain.ParseNumber(in.Amount)
	if _, isBool := in.Amount.(bool); !ok || isBool || amount <= 0 {
		return domain.TradeRequest{}, &domain.ValidationError{Msg: "amount must be > 0"}
	}
	if s.cfg.MaxAmount > 0 && amount > s.cfg.MaxAmount {
		return domain.TradeRequest{}, &domain.ValidationError{Msg: fmt.Sprintf("amount must be <= %g", s.cfg.MaxAmount)}
	}

	return domain.TradeRequest{Token: token, Side: side, Amount: amount}, nil
}

// Simulate validates in and returns the command that Execute would run.
func (s *TradeService) Simulate(in TradeInput) (domain.TradeSimulation, error) {
	req, err := s.Validate(in)
	if err != nil {
		return domain.TradeSimulation{}, err
	}

	cmd := s.placer.BuildMarketOrderCommand(req)
	return domain.TradeSimulation{
		Command:     cmd,
		CommandText: strings.Join(cmd, " "),
		RiskChecks:  append([]string(nil), riskChecks...),
	}, nil
}

// Execute places the order. It fails with domain.ErrTradingDisabled before
// validating anything when execution is off.
func (s *TradeService) Execute(ctx context.Context, in TradeInput) (any, error) {
	if !s.cfg.Enabled {
		return nil, fmt.Errorf("%w: set ENABLE_TRADING=true to enable execution", domain.ErrTradingDisabled)
	}

	req, err := s.Validate(in)
	if err != nil {
		return nil, err
	}

	evt := domain.TradeEvent{
		ID:        uuid.NewString(),
		Request:   req,
		Timestamp: s.now().UTC(),
	}

	result, err := s.placer.MarketOrder(ctx, req)
	if err != nil {
		evt.Error = err.Error()
		evt.Code = domain.ErrorCode(err, "EXEC_FAILED")
		s.logger.ErrorContext(ctx, "trade_service: market order failed",
			slog.String("trade_id", evt.ID),
			slog.String("token", req.Token),
			slog.String("side", string(req.Side)),
			slog.Float64("amount", req.Amount),
			slog.String("code", evt.Code),
			slog.String("error", err.Error()),
		)
		s.publish(ctx, evt)
		s.notify(ctx, notify.EventTradeFailed, "Trade failed",
			fmt.Sprintf("%s %g of %s: %v", req.Side, req.Amount, req.Token, err))
		return nil, fmt.Errorf("trade_service: execute: %w", err)
	}

	evt.OK = true
	s.logger.InfoContext(ctx, "trade_service: market order placed",
		slog.String("trade_id", evt.ID),
		slog.String("token", req.Token),
		slog.String("side", string(req.Side)),
		slog.Float64("amount", req.Amount),
	)
	s.publish(ctx, evt)
	s.notify(ctx, notify.EventTradeExecuted, "Trade executed",
		fmt.Sprintf("%s %g of %s", req.Side, req.Amount, req.Token))

	return result, nil
}

func (s *TradeService) publish(ctx context.Context, evt domain.TradeEvent) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(envelope{Type: "trade", Payload: evt})
	if err != nil {
		return
	}
	if pubErr := s.bus.Publish(ctx, domain.ChannelTrade, payload); pubErr != nil {
		s.logger.WarnContext(ctx, "trade_service: publish event failed",
			slog.String("trade_id", evt.ID),
			slog.String("error", pubErr.Error()),
		)
	}
}

func (s *TradeService) notify(ctx context.Context, event, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event, title, message); err != nil {
		s.logger.WarnContext(ctx, "trade_service: notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
