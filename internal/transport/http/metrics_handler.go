package http

import (
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"globalinsights/internal/dataprocessing"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/middleware"
	"globalinsights/internal/services"
	api "globalinsights/pkg/contracts/api/v1"
)

// MetricsHandler serves the metric catalog and the per-metric views
type MetricsHandler struct {
	base
	service DatasetQueries
}

// NewMetricsHandler creates a metrics handler
func NewMetricsHandler(service DatasetQueries, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		base:    newBase(logger, errorHandler, "metrics_handler"),
		service: service,
	}
}

// Register adds the catalog and metric routes to r
func (h *MetricsHandler) Register(r chi.Router) {
	r.Get("/metrics", h.GetCatalog)
	r.Get("/metrics/options", h.GetOptions)
	r.Route("/metrics/{metric}", func(r chi.Router) {
		r.Use(h.MetricCtx)
		r.Get("/values", h.GetValues)
		r.Get("/stats", h.GetStats)
		r.Get("/outliers", h.GetOutliers)
		r.Get("/rankings", h.GetRankings)
		r.Get("/regional", h.GetRegional)
		r.Get("/hierarchy", h.GetHierarchy)
	})
	r.Get("/domains", h.GetDomains)
	r.Get("/domains/{domain}", h.GetDomain)
}

// MetricCtx rejects a blank metric parameter
func (h *MetricsHandler) MetricCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(pathParam(r, "metric")) == "" {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("metric", "metric is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetCatalog handles GET /api/metrics
func (h *MetricsHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Metrics(r.Context())
	if err != nil {
		h.fail(w, r, "catalog", err)
		return
	}
	respond(w, r, catalog)
}

// GetOptions handles GET /api/metrics/options
func (h *MetricsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := h.service.MetricOptions(ctx)
	if err != nil {
		h.fail(w, r, "metric_options", err)
		return
	}
	x, y, err := h.service.DefaultCorrelationPair(ctx)
	if err != nil {
		h.fail(w, r, "metric_options", err)
		return
	}
	respond(w, r, api.MetricOptionsResponse{Options: opts, DefaultX: x, DefaultY: y})
}

// GetValues handles GET /api/metrics/{metric}/values?continent=&development_level=
func (h *MetricsHandler) GetValues(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.MetricValues(r.Context(), pathParam(r, "metric"), filterFrom(r))
	if err != nil {
		h.fail(w, r, "metric_values", err)
		return
	}
	respondList(w, r, points)
}

// filterFrom reads the repeated or comma separated row filters
func filterFrom(r *http.Request) services.Filter {
	return services.Filter{
		Continents:        middleware.QueryList(r, "continent"),
		DevelopmentLevels: middleware.QueryList(r, "development_level"),
	}
}

// GetStats handles GET /api/metrics/{metric}/stats
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), pathParam(r, "metric"))
	if err != nil {
		h.fail(w, r, "stats", err)
		return
	}
	respond(w, r, stats)
}

// GetOutliers handles GET /api/metrics/{metric}/outliers?method=&threshold=
func (h *MetricsHandler) GetOutliers(w http.ResponseWriter, r *http.Request) {
	method, err := middleware.QueryEnum(r, "method",
		[]string{dataprocessing.OutliersIQR, dataprocessing.OutliersZScore}, dataprocessing.OutliersIQR)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	threshold, err := middleware.QueryFloat(r, "threshold", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	outliers, err := h.service.Outliers(r.Context(), pathParam(r, "metric"), method, threshold)
	if err != nil {
		h.fail(w, r, "outliers", err)
		return
	}
	respond(w, r, outliers)
}

// GetRankings handles GET /api/metrics/{metric}/rankings?n=&order=. The service
// applies the default count and the cap.
func (h *MetricsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	n, err := middleware.QueryInt(r, "n", 1, math.MaxInt32, 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	order, err := middleware.QueryEnum(r, "order", []string{"asc", "desc"}, "desc")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ranked, err := h.service.Rankings(r.Context(), pathParam(r, "metric"), n, order == "asc")
	if err != nil {
		h.fail(w, r, "rankings", err)
		return
	}
	respondList(w, r, ranked)
}

// GetRegional handles GET /api/metrics/{metric}/regional?aggregation=
func (h *MetricsHandler) GetRegional(w http.ResponseWriter, r *http.Request) {
	aggregation, err := middleware.QueryEnum(r, "aggregation",
		[]string{services.AggregateMean, services.AggregateSum, services.AggregateMedian}, services.AggregateMean)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	values, err := h.service.Regional(r.Context(), pathParam(r, "metric"), aggregation, filterFrom(r))
	if err != nil {
		h.fail(w, r, "regional", err)
		return
	}
	respondList(w, r, values)
}

// GetHierarchy handles GET /api/metrics/{metric}/hierarchy
func (h *MetricsHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Hierarchy(r.Context(), pathParam(r, "metric"))
	if err != nil {
		h.fail(w, r, "hierarchy", err)
		return
	}
	respond(w, r, tree)
}

// GetDomains handles GET /api/domains
func (h *MetricsHandler) GetDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.service.Domains(r.Context())
	if err != nil {
		h.fail(w, r, "domains", err)
		return
	}
	respondList(w, r, domains)
}

// GetDomain handles GET /api/domains/{domain}
func (h *MetricsHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.DomainMetrics(r.Context(), pathParam(r, "domain"))
	if err != nil {
		h.fail(w, r, "domain", err)
		return
	}
	respond(w, r, d)
}
