package services

import "errors"

// Dataset service errors. Handlers match them with errors.Is.
var (
	// Lifecycle errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// Lookup errors
	ErrMetricNotFound  = errors.New("metric not found")
	ErrCountryNotFound = errors.New("country not found")
	ErrDomainNotFound  = errors.New("domain not found")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
