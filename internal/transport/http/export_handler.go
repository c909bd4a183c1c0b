package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/middleware"
	"globalinsights/internal/services"
	api "globalinsights/pkg/contracts/api/v1"
)

// ExportHandler writes dataset exports on request
type ExportHandler struct {
	base
	exporter  Exporter
	validator *middleware.Validator
}

// NewExportHandler creates an export handler
func NewExportHandler(exporter Exporter, validator *middleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		base:      newBase(logger, errorHandler, "export_handler"),
		exporter:  exporter,
		validator: validator,
	}
}

// Register adds the export routes to r
func (h *ExportHandler) Register(r chi.Router) {
	r.Get("/exports", h.List)
	r.Post("/exports/{format}", h.Export)
}

// List handles GET /api/exports
func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.exporter.List(r.Context())
	if err != nil {
		h.fail(w, r, "list_exports", err)
		return
	}
	respondList(w, r, files)
}

// Export handles POST /api/exports/{format}. The body is optional.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if !slices.Contains(api.ExportFormats, format) {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("format",
			"format must be one of: "+strings.Join(api.ExportFormats, ", ")))
		return
	}

	var req api.ExportRequest
	if r.ContentLength != 0 {
		if err := h.validator.DecodeAndValidate(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	path, err := h.exporter.Export(r.Context(), format, services.ExportOptions{
		FileName: req.FileName,
		Metrics:  req.Metrics,
		BOM:      req.BOM,
	})
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Export created",
		slog.String("format", format),
		slog.String("path", path),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	render.Status(r, http.StatusCreated)
	respond(w, r, api.ExportResponse{Format: format, Path: path})
}
