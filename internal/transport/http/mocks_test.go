package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"globalinsights/internal/dataprocessing"
	"globalinsights/internal/services"
	"globalinsights/pkg/contracts/domain"
)

// MockDatasets is a testify mock of DatasetQueries
type MockDatasets struct {
	mock.Mock
}

// result returns the first mocked value as T, tolerating nil
func result[T any](args mock.Arguments) T {
	var zero T
	if v := args.Get(0); v != nil {
		return v.(T)
	}
	return zero
}

func (m *MockDatasets) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	args := m.Called()
	return result[domain.DatasetSummary](args), args.Error(1)
}

func (m *MockDatasets) Reload(ctx context.Context) (domain.DatasetSummary, error) {
	args := m.Called()
	return result[domain.DatasetSummary](args), args.Error(1)
}

func (m *MockDatasets) Countries(ctx context.Context) ([]string, error) {
	args := m.Called()
	return result[[]string](args), args.Error(1)
}

func (m *MockDatasets) Country(ctx context.Context, name string) ([]domain.CountryRecord, error) {
	args := m.Called(name)
	return result[[]domain.CountryRecord](args), args.Error(1)
}

func (m *MockDatasets) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	args := m.Called()
	return result[domain.FilterOptions](args), args.Error(1)
}

func (m *MockDatasets) StatsCards(ctx context.Context) (domain.StatsCards, error) {
	args := m.Called()
	return result[domain.StatsCards](args), args.Error(1)
}

func (m *MockDatasets) Metrics(ctx context.Context) (dataprocessing.Catalog, error) {
	args := m.Called()
	return result[dataprocessing.Catalog](args), args.Error(1)
}

func (m *MockDatasets) Domains(ctx context.Context) ([]dataprocessing.Domain, error) {
	args := m.Called()
	return result[[]dataprocessing.Domain](args), args.Error(1)
}

func (m *MockDatasets) DomainMetrics(ctx context.Context, name string) (dataprocessing.Domain, error) {
	args := m.Called(name)
	return result[dataprocessing.Domain](args), args.Error(1)
}

func (m *MockDatasets) MetricOptions(ctx context.Context) ([]domain.MetricOption, error) {
	args := m.Called()
	return result[[]domain.MetricOption](args), args.Error(1)
}

func (m *MockDatasets) DefaultCorrelationPair(ctx context.Context) (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockDatasets) MetricValues(ctx context.Context, metric string, filter services.Filter) ([]domain.MetricPoint, error) {
	args := m.Called(metric, filter)
	return result[[]domain.MetricPoint](args), args.Error(1)
}

func (m *MockDatasets) Regional(ctx context.Context, metric, aggregation string, filter services.Filter) ([]domain.RegionalValue, error) {
	args := m.Called(metric, aggregation, filter)
	return result[[]domain.RegionalValue](args), args.Error(1)
}

func (m *MockDatasets) Hierarchy(ctx context.Context, metric string) (*domain.HierarchyNode, error) {
	args := m.Called(metric)
	return result[*domain.HierarchyNode](args), args.Error(1)
}

func (m *MockDatasets) Rankings(ctx context.Context, metric string, n int, ascending bool) ([]domain.RankedCountry, error) {
	args := m.Called(metric, n, ascending)
	return result[[]domain.RankedCountry](args), args.Error(1)
}

func (m *MockDatasets) Outliers(ctx context.Context, metric, method string, threshold float64) (domain.Outliers, error) {
	args := m.Called(metric, method, threshold)
	return result[domain.Outliers](args), args.Error(1)
}

func (m *MockDatasets) Stats(ctx context.Context, metric string) (domain.MetricStats, error) {
	args := m.Called(metric)
	return result[domain.MetricStats](args), args.Error(1)
}

func (m *MockDatasets) Compare(ctx context.Context, countries, metrics []string) (domain.Comparison, error) {
	args := m.Called(countries, metrics)
	return result[domain.Comparison](args), args.Error(1)
}

func (m *MockDatasets) Correlate(ctx context.Context, x, y, colorBy, sizeBy string) (domain.Scatter, error) {
	args := m.Called(x, y, colorBy, sizeBy)
	return result[domain.Scatter](args), args.Error(1)
}

func (m *MockDatasets) CorrelationMatrix(ctx context.Context, metrics []string) (domain.CorrelationMatrix, error) {
	args := m.Called(metrics)
	return result[domain.CorrelationMatrix](args), args.Error(1)
}

func (m *MockDatasets) Composite(ctx context.Context, metrics []string, weights []float64, n int) ([]domain.RankedCountry, error) {
	args := m.Called(metrics, weights, n)
	return result[[]domain.RankedCountry](args), args.Error(1)
}

// MockExporter is a testify mock of Exporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, format string, opts services.ExportOptions) (string, error) {
	args := m.Called(format, opts)
	return args.String(0), args.Error(1)
}

func (m *MockExporter) List(ctx context.Context) ([]domain.ExportFile, error) {
	args := m.Called()
	return result[[]domain.ExportFile](args), args.Error(1)
}

// MockHealth is a testify mock of HealthChecker
type MockHealth struct {
	mock.Mock
}

func (m *MockHealth) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealth) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealth) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealth) Version() map[string]any {
	return m.Called().Get(0).(map[string]any)
}
