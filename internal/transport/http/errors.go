package http

import (
	"errors"
	"net/http"
	"strings"

	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/services"
)

// serviceError maps service sentinels onto API errors. Errors that already carry an
// HTTP meaning (APIError, AppError, context errors) pass through unchanged.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apperrors.ErrDatasetNotLoaded
	case errors.Is(err, services.ErrMetricNotFound):
		return apperrors.MetricNotFoundError(detail(err, services.ErrMetricNotFound))
	case errors.Is(err, services.ErrCountryNotFound):
		return apperrors.CountryNotFoundError(detail(err, services.ErrCountryNotFound))
	case errors.Is(err, services.ErrDomainNotFound):
		return apperrors.DomainNotFoundError(detail(err, services.ErrDomainNotFound))
	case errors.Is(err, services.ErrInvalidInput):
		return apperrors.NewValidationError(detail(err, services.ErrInvalidInput))
	case apperrors.IsType(err, apperrors.ErrTypeExport):
		var appErr *apperrors.AppError
		errors.As(err, &appErr)
		return apperrors.ExportFailedError(appErr.Message)
	}
	return err
}

// detail returns what the service appended after the sentinel:
// "metric not found: GDP" -> "GDP"
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// statusOf reports the HTTP status an error will be rendered with, for logging
func statusOf(err error) int {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
