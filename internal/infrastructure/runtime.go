package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the Go runtime, served by the detailed health check.
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	GCCount       uint32  `json:"gc_count"`
	LastGCPauseMS float64 `json:"last_gc_pause_ms"`
	CPUCount      int     `json:"cpu_count"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// RuntimeCollector samples runtime statistics and mirrors them into gauges.
type RuntimeCollector struct {
	started    time.Time
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
}

// NewRuntimeCollector registers the runtime gauges on meter. A nil meter yields a
// collector that only samples.
func NewRuntimeCollector(meter metric.Meter, started time.Time) (*RuntimeCollector, error) {
	c := &RuntimeCollector{started: started}
	if meter == nil {
		return c, nil
	}

	var err error
	c.goroutines, err = meter.Int64Gauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return nil, err
	}
	c.heapAlloc, err = meter.Int64Gauge("system_memory_usage_bytes",
		metric.WithDescription("Heap bytes in use"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Collect samples the runtime and records the gauges.
func (c *RuntimeCollector) Collect(ctx context.Context) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / (1 << 20),
		SysMB:         float64(mem.Sys) / (1 << 20),
		GCCount:       mem.NumGC,
		LastGCPauseMS: float64(mem.PauseNs[(mem.NumGC+255)%256]) / float64(time.Millisecond),
		CPUCount:      runtime.NumCPU(),
		UptimeSeconds: time.Since(c.started).Seconds(),
	}

	if c.goroutines != nil {
		c.goroutines.Record(ctx, int64(stats.Goroutines))
	}
	if c.heapAlloc != nil {
		c.heapAlloc.Record(ctx, int64(mem.HeapAlloc))
	}
	return stats
}
