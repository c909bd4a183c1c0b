package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"globalinsights/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelConfigFromSettings(t *testing.T) {
	cfg := config.Default()
	cfg.OTel = config.OTelSettings{EnableMetrics: false, EnableTracing: true, SampleRatio: 0.5}

	out := OTelConfigFromSettings(cfg)
	assert.Equal(t, ServiceName, out.ServiceName)
	assert.Equal(t, config.AppVersion, out.ServiceVersion)
	assert.Equal(t, "none", out.TraceExporter)
	assert.Equal(t, "none", out.MetricExporter)
	assert.Equal(t, 0.5, out.SampleRatio)
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name         string
		cfg          *OTelConfig
		wantErr      bool
		wantPromHTTP bool
		wantTracer   bool
	}{
		{
			name:         "metrics only",
			cfg:          &OTelConfig{ServiceName: ServiceName, EnableMetrics: true, MetricExporter: "prometheus"},
			wantPromHTTP: true,
		},
		{
			name:       "stdout tracing",
			cfg:        &OTelConfig{ServiceName: ServiceName, EnableTracing: true, TraceExporter: "stdout", SampleRatio: 1},
			wantTracer: true,
		},
		{
			name: "everything disabled",
			cfg:  &OTelConfig{ServiceName: ServiceName},
		},
		{
			name:    "unknown trace exporter",
			cfg:     &OTelConfig{EnableTracing: true, TraceExporter: "jaeger"},
			wantErr: true,
		},
		{
			name:    "nil config",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, quietLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantPromHTTP, providers.PrometheusHTTP != nil)
			assert.Equal(t, tt.wantTracer, providers.TracerProvider != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestBusinessMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordPipelineRun(ctx, 7, 28, 3, 150*time.Millisecond, nil)
	metrics.RecordPipelineRun(ctx, 0, 0, 0, time.Millisecond, errors.New("boom"))
	metrics.RecordCacheLookup(ctx, "rankings", true)
	metrics.RecordCacheLookup(ctx, "rankings", false)
	metrics.RecordCacheLookup(ctx, "stats", false)
	metrics.RecordExport(ctx, "csv", nil)

	got := collect(t, reader)
	assert.Equal(t, int64(7), sumValue(t, got["gie_datasets_loaded_total"]))
	assert.Equal(t, int64(28), sumValue(t, got["gie_rows_loaded_total"]))
	assert.Equal(t, int64(3), sumValue(t, got["gie_cells_nulled_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["gie_pipeline_errors_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["gie_cache_hits_total"]))
	assert.Equal(t, int64(2), sumValue(t, got["gie_cache_misses_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["gie_exports_total"]))

	hist, ok := got["gie_pipeline_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordPipelineRun(context.Background(), 1, 1, 1, time.Second, nil)
		m.RecordCacheLookup(context.Background(), "q", true)
		m.RecordExport(context.Background(), "csv", nil)
	})
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "merge", attribute.Int("tables", 7))
	defer span.End()
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() { RecordError(ctx, errors.New("x")) })
}

func TestRuntimeCollector(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	c, err := NewRuntimeCollector(mp.Meter("test"), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	stats := c.Collect(context.Background())
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.CPUCount)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 60.0)

	got := collect(t, reader)
	assert.Contains(t, got, "system_goroutines")
}
