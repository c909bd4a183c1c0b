package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/services"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	base
	service HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthChecker, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *HealthHandler {
	return &HealthHandler{
		base:    newBase(logger, errorHandler, "health_handler"),
		service: service,
	}
}

// Register adds the health routes to r
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/health/ready", h.ReadinessCheck)
	r.Get("/health/live", h.LivenessCheck)
	r.Get("/version", h.Version)
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck handles GET /api/health/ready. Not ready is a 503 problem listing
// the per-service states.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != services.StatusReady {
		h.errorHandler.HandleError(w, r, apperrors.NewWithDetails(
			http.StatusServiceUnavailable,
			apperrors.ErrServiceUnavailable.ErrorCode,
			"Service is not ready",
			status.Services,
		))
		return
	}
	respond(w, r, status)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.service.Version())
}
