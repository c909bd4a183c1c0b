package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"globalinsights/internal/config"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/middleware"
)

// Dependencies are the services behind the API
type Dependencies struct {
	Datasets DatasetQueries
	Exports  Exporter
	Health   HealthChecker
	Colors   map[string]config.ColorScheme
}

// API groups the handlers mounted under /api
type API struct {
	Health   *HealthHandler
	Dataset  *DatasetHandler
	Metrics  *MetricsHandler
	Analysis *AnalysisHandler
	Export   *ExportHandler

	errorHandler *apperrors.ErrorHandler
}

// NewAPI builds every handler over deps
func NewAPI(deps Dependencies, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *API {
	validator := middleware.NewValidator(logger)
	return &API{
		Health:       NewHealthHandler(deps.Health, logger, errorHandler),
		Dataset:      NewDatasetHandler(deps.Datasets, deps.Colors, logger, errorHandler),
		Metrics:      NewMetricsHandler(deps.Datasets, logger, errorHandler),
		Analysis:     NewAnalysisHandler(deps.Datasets, validator, logger, errorHandler),
		Export:       NewExportHandler(deps.Exports, validator, logger, errorHandler),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api router. Unknown paths and methods get problem documents.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(middleware.ContentTypeValidator(a.errorHandler, "application/json"))
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Health.Register(r)
	a.Dataset.Register(r)
	a.Metrics.Register(r)
	a.Analysis.Register(r)
	a.Export.Register(r)
	return r
}
