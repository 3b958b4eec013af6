package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// TriggerHandler asks the watch loop for an immediate scan.
type TriggerHandler struct {
	logger    *slog.Logger
	triggerCh chan<- struct{}
}

// NewTriggerHandler creates a TriggerHandler that signals on ch.
func NewTriggerHandler(ch chan<- struct{}, logger *slog.Logger) *TriggerHandler {
	return &TriggerHandler{triggerCh: ch, logger: logHandler(logger, "trigger")}
}

// TriggerScan enqueues one watch scan. A trigger already pending absorbs
// this one.
// POST /api/scan/trigger
func (h *TriggerHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	queued := false
	select {
	case h.triggerCh <- struct{}{}:
		queued = true
	default:
	}
	h.logger.InfoContext(r.Context(), "handler: scan trigger requested",
		slog.Bool("queued", queued),
	)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":      "accepted",
		"queued":      queued,
		"requestedAt": time.Now().UTC().Format(time.RFC3339),
	})
}
