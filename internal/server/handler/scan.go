package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

// ScanService runs scans and returns the latest result.
type ScanService interface {
	Scan(ctx context.Context, req domain.ScanRequest) (domain.ScanResult, error)
	Latest(ctx context.Context) (domain.ScanResult, error)
}

// ScanHandler serves the scan endpoints.
type ScanHandler struct {
	radar  ScanService
	logger *slog.Logger
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(radar ScanService, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{radar: radar, logger: logHandler(logger, "scan")}
}

// Scan runs a scan with the query parameters.
// GET /api/scan?search=&limit=20&enrich=true&sort_by=score&order=desc
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	req := parseScanRequest(r)

	result, err := h.radar.Scan(r.Context(), req)
	if err != nil {
		writeCodedError(w, http.StatusInternalServerError, err.Error(), domain.ErrorCode(err, "SCAN_FAILED"), false)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Latest returns the most recent scan without running a new one.
// GET /api/scan/latest
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.radar.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no scan has completed yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: latest scan failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load latest scan")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseScanRequest reads the scan query. A zero limit lets the service apply
// its default; enrichment is on unless enrich is exactly "false".
func parseScanRequest(r *http.Request) domain.ScanRequest {
	q := r.URL.Query()
	return domain.ScanRequest{
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  positiveInt(q.Get("limit")),
		Enrich: !strings.EqualFold(strings.TrimSpace(q.Get("enrich")), "false"),
		SortBy: q.Get("sort_by"),
		Order:  q.Get("order"),
	}
}
