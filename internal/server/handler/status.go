package handler

import (
	"net/http"
	"time"
)

// StatusHandler reports the run mode and uptime.
type StatusHandler struct {
	mode      string
	startedAt time.Time
	now       func() time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(mode string, startedAt time.Time) *StatusHandler {
	return &StatusHandler{mode: mode, startedAt: startedAt, now: time.Now}
}

// GetStatus responds with the current mode and uptime.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	uptime := h.now().Sub(h.startedAt)
	if uptime < 0 {
		uptime = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":          h.mode,
		"startedAt":     h.startedAt.UTC().Format(time.RFC3339),
		"uptimeSeconds": int64(uptime.Seconds()),
	})
}
