package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/middleware"
	api "globalinsights/pkg/contracts/api/v1"
)

// AnalysisHandler serves the multi-metric analyses that take a JSON body
type AnalysisHandler struct {
	base
	service   DatasetQueries
	validator *middleware.Validator
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(service DatasetQueries, validator *middleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		base:      newBase(logger, errorHandler, "analysis_handler"),
		service:   service,
		validator: validator,
	}
}

// Register adds the analysis routes to r
func (h *AnalysisHandler) Register(r chi.Router) {
	r.Post("/compare", h.Compare)
	r.Post("/correlation", h.Correlate)
	r.Post("/correlation/matrix", h.CorrelationMatrix)
	r.Post("/composite", h.Composite)
}

// Compare handles POST /api/compare
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req api.CompareRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	cmp, err := h.service.Compare(r.Context(), req.Countries, req.Metrics)
	if err != nil {
		h.fail(w, r, "compare", err)
		return
	}
	respond(w, r, cmp)
}

// Correlate handles POST /api/correlation
func (h *AnalysisHandler) Correlate(w http.ResponseWriter, r *http.Request) {
	var req api.CorrelationRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	scatter, err := h.service.Correlate(r.Context(), req.X, req.Y, req.ColorBy, req.SizeBy)
	if err != nil {
		h.fail(w, r, "correlate", err)
		return
	}
	respond(w, r, scatter)
}

// CorrelationMatrix handles POST /api/correlation/matrix
func (h *AnalysisHandler) CorrelationMatrix(w http.ResponseWriter, r *http.Request) {
	var req api.MatrixRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	matrix, err := h.service.CorrelationMatrix(r.Context(), req.Metrics)
	if err != nil {
		h.fail(w, r, "correlation_matrix", err)
		return
	}
	respond(w, r, matrix)
}

// Composite handles POST /api/composite
func (h *AnalysisHandler) Composite(w http.ResponseWriter, r *http.Request) {
	var req api.CompositeRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if len(req.Weights) > 0 && len(req.Weights) != len(req.Metrics) {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("weights", "weights must match metrics one to one"))
		return
	}

	ranked, err := h.service.Composite(r.Context(), req.Metrics, req.Weights, req.Limit)
	if err != nil {
		h.fail(w, r, "composite", err)
		return
	}
	respondList(w, r, ranked)
}
