package http

import (
	"context"

	"globalinsights/internal/dataprocessing"
	"globalinsights/internal/services"
	"globalinsights/pkg/contracts/domain"
)

// DatasetQueries is the query surface of services.DatasetService used by the handlers
type DatasetQueries interface {
	Summary(ctx context.Context) (domain.DatasetSummary, error)
	Reload(ctx context.Context) (domain.DatasetSummary, error)
	Countries(ctx context.Context) ([]string, error)
	Country(ctx context.Context, name string) ([]domain.CountryRecord, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
	StatsCards(ctx context.Context) (domain.StatsCards, error)

	Metrics(ctx context.Context) (dataprocessing.Catalog, error)
	Domains(ctx context.Context) ([]dataprocessing.Domain, error)
	DomainMetrics(ctx context.Context, name string) (dataprocessing.Domain, error)
	MetricOptions(ctx context.Context) ([]domain.MetricOption, error)
	DefaultCorrelationPair(ctx context.Context) (x, y string, err error)

	MetricValues(ctx context.Context, metric string, filter services.Filter) ([]domain.MetricPoint, error)
	Regional(ctx context.Context, metric, aggregation string, filter services.Filter) ([]domain.RegionalValue, error)
	Hierarchy(ctx context.Context, metric string) (*domain.HierarchyNode, error)
	Rankings(ctx context.Context, metric string, n int, ascending bool) ([]domain.RankedCountry, error)
	Outliers(ctx context.Context, metric, method string, threshold float64) (domain.Outliers, error)
	Stats(ctx context.Context, metric string) (domain.MetricStats, error)

	Compare(ctx context.Context, countries, metrics []string) (domain.Comparison, error)
	Correlate(ctx context.Context, x, y, colorBy, sizeBy string) (domain.Scatter, error)
	CorrelationMatrix(ctx context.Context, metrics []string) (domain.CorrelationMatrix, error)
	Composite(ctx context.Context, metrics []string, weights []float64, n int) ([]domain.RankedCountry, error)
}

// Exporter writes dataset exports and lists the ones on disk
type Exporter interface {
	Export(ctx context.Context, format string, opts services.ExportOptions) (string, error)
	List(ctx context.Context) ([]domain.ExportFile, error)
}

// HealthChecker reports service health
type HealthChecker interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]any
}

var (
	_ DatasetQueries = (*services.DatasetService)(nil)
	_ Exporter       = (*services.ExportService)(nil)
	_ HealthChecker  = (*services.HealthService)(nil)
)
