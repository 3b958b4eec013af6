package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/service"
)

// TradeService validates, simulates and executes market orders.
type TradeService interface {
	Simulate(in service.TradeInput) (domain.TradeSimulation, error)
	Execute(ctx context.Context, in service.TradeInput) (any, error)
}

// TradeHandler serves the trade endpoints.
type TradeHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(trades TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{trades: trades, logger: logHandler(logger, "trade")}
}

// Simulate returns the CLI command an order would run, without running it.
// POST /api/trade/simulate
func (h *TradeHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var in service.TradeInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sim, err := h.trades.Simulate(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// executeResponse wraps the CLI's answer to a placed order.
type executeResponse struct {
	OK     bool `json:"ok"`
	Result any  `json:"result"`
}

// Execute places a market order through the CLI when trading is enabled.
// POST /api/trade/execute
func (h *TradeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var in service.TradeInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.trades.Execute(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, executeResponse{OK: true, Result: result})
	case errors.Is(err, domain.ErrTradingDisabled):
		writeError(w, http.StatusForbidden, "Trading is disabled. Set ENABLE_TRADING=true to enable execution.")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "handler: execute trade failed",
			slog.String("error", err.Error()),
		)
		writeCodedError(w, http.StatusInternalServerError, err.Error(), domain.ErrorCode(err, "EXEC_FAILED"), true)
	}
}
