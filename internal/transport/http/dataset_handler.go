package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"globalinsights/internal/config"
	apperrors "globalinsights/internal/errors"
)

// DatasetHandler serves the dataset summary, reload, countries and dashboard lookups
type DatasetHandler struct {
	base
	service DatasetQueries
	colors  map[string]config.ColorScheme
}

// NewDatasetHandler creates a dataset handler
func NewDatasetHandler(service DatasetQueries, colors map[string]config.ColorScheme, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DatasetHandler {
	if colors == nil {
		colors = config.DefaultColorSchemes()
	}
	return &DatasetHandler{
		base:    newBase(logger, errorHandler, "dataset_handler"),
		service: service,
		colors:  colors,
	}
}

// Register adds the dataset routes to r
func (h *DatasetHandler) Register(r chi.Router) {
	r.Get("/dataset", h.GetSummary)
	r.Post("/dataset/reload", h.Reload)
	r.Get("/countries", h.GetCountries)
	r.Get("/countries/{country}", h.GetCountry)
	r.Get("/filters", h.GetFilters)
	r.Get("/stats/cards", h.GetStatsCards)
	r.Get("/colors", h.GetColors)
}

// GetSummary handles GET /api/dataset. The source fingerprint doubles as the ETag.
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "summary", err)
		return
	}

	if summary.Fingerprint != "" {
		etag := `"` + summary.Fingerprint + `"`
		w.Header().Set("ETag", etag)
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	respond(w, r, summary)
}

// etagMatches implements the If-None-Match list comparison
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// Reload handles POST /api/dataset/reload
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Dataset reload requested",
		slog.String("remote_addr", r.RemoteAddr))

	summary, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, "reload", err)
		return
	}
	respond(w, r, summary)
}

// GetCountries handles GET /api/countries
func (h *DatasetHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.Countries(r.Context())
	if err != nil {
		h.fail(w, r, "countries", err)
		return
	}
	respondList(w, r, countries)
}

// GetCountry handles GET /api/countries/{country}
func (h *DatasetHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "country")
	if strings.TrimSpace(name) == "" {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("country", "country is required"))
		return
	}

	records, err := h.service.Country(r.Context(), name)
	if err != nil {
		h.fail(w, r, "country", err)
		return
	}
	respondList(w, r, records)
}

// GetFilters handles GET /api/filters
func (h *DatasetHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.fail(w, r, "filters", err)
		return
	}
	respond(w, r, opts)
}

// GetStatsCards handles GET /api/stats/cards
func (h *DatasetHandler) GetStatsCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.StatsCards(r.Context())
	if err != nil {
		h.fail(w, r, "stats_cards", err)
		return
	}
	respond(w, r, cards)
}

// GetColors handles GET /api/colors
func (h *DatasetHandler) GetColors(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.colors)
}
