// Package services implements the query and export layer of the Global Insights
// Explorer. It sits between the HTTP handlers and the data pipeline.
//
// # Services
//
//	- DatasetService: serves the merged country dataset and every analytic view
//	  over it (maps, regional aggregates, comparisons, correlations, rankings)
//	- ExportService: writes the dataset as CSV, Excel, JSON, a data dictionary,
//	  a summary report or a SQLite snapshot
//	- HealthService: liveness, readiness and version information
//
// # Dataset lifecycle
//
// A DatasetService holds one immutable dataset at a time. Reload runs the
// configured DatasetLoader and swaps the dataset only when the run succeeds;
// concurrent reloads share one run. Query results are memoised in an expiring
// LRU keyed by dataset generation, so a swap never serves stale results.
//
// # Error Handling
//
// Services return sentinel errors wrapped with context:
//
//	- ErrDatasetNotLoaded when nothing has been loaded yet
//	- ErrMetricNotFound, ErrCountryNotFound, ErrDomainNotFound for unknown names
//	- ErrInvalidInput for malformed requests
//
// Handlers map them to problem responses with errors.Is.
package services
