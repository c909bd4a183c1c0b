// Package http exposes the dataset queries as a JSON API under /api.
//
// Handlers are thin: they parse path, query and body parameters, call a service
// interface and render the result. Successful responses use the envelope
//
//	{"status": "success", "data": ..., "count": n}
//
// where count is present for list payloads. Failures are RFC 7807 problem documents
// written by errors.ErrorHandler; service sentinel errors are mapped first:
//
//	services.ErrDatasetNotLoaded  -> 503
//	services.ErrMetricNotFound    -> 404 (also country and domain)
//	services.ErrInvalidInput      -> 400
//
// JSON bodies are decoded and validated by middleware.Validator, so validation
// errors name fields by their json tags.
package http
