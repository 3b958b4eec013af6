package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polyradar/internal/domain"
	"github.com/alanyoungcy/polyradar/internal/service"
)

// HealthChecker probes the market source.
type HealthChecker interface {
	Health(ctx context.Context) (service.Health, error)
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logHandler(logger, "health")}
}

// HealthCheck reports whether the CLI answers. A missing CLI is still a 200
// because the radar can serve mock data.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, err := h.checker.Health(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: health check failed",
			slog.String("error", err.Error()),
		)
		writeCodedError(w, http.StatusInternalServerError, err.Error(), domain.ErrorCode(err, "UNKNOWN"), true)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
