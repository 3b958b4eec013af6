package handler

import "net/http"

// ConfigView is the client-visible subset of the radar configuration.
type ConfigView struct {
	TradingEnabled    bool   `json:"tradingEnabled"`
	DefaultLimit      int    `json:"defaultLimit"`
	MaxEnrich         int    `json:"maxEnrich"`
	Binary            string `json:"binary"`
	MockIfUnavailable bool   `json:"mockIfUnavailable"`
}

// ConfigHandler serves the static configuration view.
type ConfigHandler struct {
	view ConfigView
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(view ConfigView) *ConfigHandler {
	return &ConfigHandler{view: view}
}

// GetConfig returns the configuration view.
// GET /api/config
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.view)
}
