package services

import (
	"context"
	"log/slog"

	"globalinsights/internal/dataprocessing"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/infrastructure"
	"globalinsights/internal/snapshot"
)

// DatasetLoader produces a fully processed dataset
type DatasetLoader interface {
	Load(ctx context.Context) (*dataprocessing.Dataset, error)
}

// PipelineLoader runs the CSV pipeline on every Load, so edits to the input files are
// picked up by a reload.
type PipelineLoader struct {
	dataDir string
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewPipelineLoader creates a loader over the CSVs in dataDir
func NewPipelineLoader(dataDir string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PipelineLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineLoader{dataDir: dataDir, metrics: metrics, logger: logger}
}

// Load runs load, clean, merge and derive
func (l *PipelineLoader) Load(ctx context.Context) (*dataprocessing.Dataset, error) {
	p := dataprocessing.NewProcessor(l.dataDir,
		dataprocessing.WithLogger(l.logger),
		dataprocessing.WithMetrics(l.metrics))
	return p.MergeDatasets(ctx)
}

// SnapshotLoader reads the SQLite snapshot and falls back to another loader when the
// snapshot is missing or unreadable.
type SnapshotLoader struct {
	path     string
	fallback DatasetLoader
	logger   *slog.Logger
}

// NewSnapshotLoader creates a loader that prefers the snapshot at path
func NewSnapshotLoader(path string, fallback DatasetLoader, logger *slog.Logger) *SnapshotLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotLoader{path: path, fallback: fallback, logger: logger}
}

// Load returns the snapshot dataset, or the fallback result
func (l *SnapshotLoader) Load(ctx context.Context) (*dataprocessing.Dataset, error) {
	ds, err := snapshot.Load(ctx, l.path)
	if err == nil {
		l.logger.InfoContext(ctx, "Loaded dataset from snapshot",
			slog.String("path", l.path),
			slog.Int("rows", ds.Table.Len()))
		return ds, nil
	}

	if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
		l.logger.InfoContext(ctx, "No snapshot found, running pipeline", slog.String("path", l.path))
	} else {
		l.logger.WarnContext(ctx, "Snapshot unreadable, running pipeline",
			slog.String("path", l.path),
			slog.String("error", err.Error()))
	}
	if l.fallback == nil {
		return nil, err
	}
	return l.fallback.Load(ctx)
}
