// Package app wires the Global Insights Explorer together and owns its lifecycle.
//
// NewApplication resolves the data paths, builds the services (dataset, export,
// health), the websocket hub and the chi router:
//
//	/ws        websocket events, outside the request middleware
//	/metrics   Prometheus exposition when metrics are enabled
//	/api/...   JSON API behind OTel, logging, recovery, security headers,
//	           CORS, rate limiting, timeout and compression
//
// Start listens, starts the hub and loads the dataset in the background. Until the
// first load finishes the API answers 503 and readiness reports not_ready. Stop
// drains the HTTP server, disconnects websocket clients and flushes telemetry.
//
// Initialization errors are returned to the caller; the package never calls os.Exit.
package app
