package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"globalinsights/internal/infrastructure"
	"globalinsights/pkg/contracts"
)

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataDir   string
	datasets  *DatasetService
	clients   ClientCounter
	collector *infrastructure.RuntimeCollector
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. datasets and clients may be nil in tests.
func NewHealthService(dataDir string, datasets *DatasetService, clients ClientCounter, collector *infrastructure.RuntimeCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	started := time.Now()
	if collector == nil {
		collector, _ = infrastructure.NewRuntimeCollector(nil, started)
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.String("data_dir", dataDir))

	return &HealthService{
		version:   contracts.Version,
		dataDir:   dataDir,
		datasets:  datasets,
		clients:   clients,
		collector: collector,
		startTime: started,
		logger:    logger.With("component", "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  hs.services(ctx),
	}
}

// ReadinessCheck is ready once a dataset is served and the data directory exists
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  hs.services(ctx),
	}

	for _, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status with runtime statistics
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := hs.collector.Collect(ctx)
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	info := contracts.GetVersionInfo()
	return map[string]any{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) services(ctx context.Context) map[string]ServiceHealth {
	return map[string]ServiceHealth{
		"dataset":   hs.checkDatasetHealth(ctx),
		"data":      hs.checkDataHealth(),
		"websocket": hs.checkWebSocketHealth(),
	}
}

// checkDatasetHealth checks that a dataset is being served
func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.datasets == nil || !hs.datasets.Loaded() {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset not loaded"}
	}
	summary, err := hs.datasets.Summary(ctx)
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d rows, %d columns", summary.Rows, summary.Columns),
		Uptime:  time.Since(summary.LoadedAt).Round(time.Second).String(),
	}
}

// checkDataHealth checks that the input directory exists
func (hs *HealthService) checkDataHealth() ServiceHealth {
	info, err := os.Stat(hs.dataDir)
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Data directory not found: %s", hs.dataDir),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Data path is not a directory: %s", hs.dataDir),
		}
	}
	return ServiceHealth{Status: StatusReady, Message: "Data directory is accessible"}
}

// checkWebSocketHealth reports the connected clients
func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	clients := 0
	if hs.clients != nil {
		clients = hs.clients.ClientCount()
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d clients connected", clients),
		Uptime:  time.Since(hs.startTime).Round(time.Second).String(),
	}
}
