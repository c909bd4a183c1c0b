package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/middleware"
	api "globalinsights/pkg/contracts/api/v1"
)

// base carries what every handler needs to answer a request
type base struct {
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

func newBase(logger *slog.Logger, errorHandler *apperrors.ErrorHandler, component string) base {
	return base{
		logger:       logger.With(slog.String("component", component)),
		errorHandler: errorHandler,
	}
}

// fail maps err and writes it as a problem document
func (b base) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	mapped := serviceError(err)
	if statusOf(mapped) >= http.StatusInternalServerError {
		b.logger.ErrorContext(r.Context(), "request failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
	}
	b.errorHandler.HandleError(w, r, mapped)
}

func respond(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, api.NewResponse(data))
}

func respondList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	render.JSON(w, r, api.NewListResponse(items, len(items)))
}

// pathParam returns a decoded chi URL parameter. Country names contain spaces,
// apostrophes and accents.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
