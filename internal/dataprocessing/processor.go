package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"globalinsights/internal/config"
	"globalinsights/internal/exporter"
	"globalinsights/internal/infrastructure"
)

// Dataset is an immutable, fully processed merged table with its catalog.
type Dataset struct {
	Table       *Table
	Catalog     Catalog
	Countries   []string
	LoadedAt    time.Time
	Fingerprint string
	Stats       []LoadStats
}

// Processor runs the load, clean, merge and derive pipeline over a data directory.
type Processor struct {
	dataDir string
	loader  *Loader
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	mu     sync.Mutex
	tables []*Table
	stats  []LoadStats
	merged *Dataset
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the processor logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records pipeline metrics on m
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// NewProcessor creates a processor for the CSV files in dataDir
func NewProcessor(dataDir string, opts ...Option) *Processor {
	p := &Processor{
		dataDir: dataDir,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.loader = NewLoader(dataDir, p.logger)
	p.logger = p.logger.With("component", "processor")
	return p
}

// DataDir returns the input directory
func (p *Processor) DataDir() string { return p.dataDir }

// LoadAllDatasets loads and types every thematic CSV. Results are kept for
// MergeDatasets.
func (p *Processor) LoadAllDatasets(ctx context.Context) ([]*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadLocked(ctx)
}

func (p *Processor) loadLocked(ctx context.Context) ([]*Table, error) {
	tables, stats, err := p.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	p.tables, p.stats = tables, stats
	return tables, nil
}

// MergeDatasets joins the loaded tables onto geography, derives Continent and
// Development_Level and builds the catalog. Tables are loaded first when needed.
func (p *Processor) MergeDatasets(ctx context.Context) (*Dataset, error) {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.merge",
		attribute.String("data_dir", p.dataDir))
	defer span.End()

	start := time.Now()
	ds, stats, err := p.merge(ctx)

	var rows, nulled int
	for _, s := range stats {
		rows += s.Rows
		nulled += s.Nulled
	}
	p.metrics.RecordPipelineRun(ctx, len(stats), rows, nulled, time.Since(start), err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.logger.ErrorContext(ctx, "Pipeline failed", slog.String("error", err.Error()))
		return nil, err
	}
	p.logger.InfoContext(ctx, "Merged dataset",
		slog.Int("rows", ds.Table.Len()),
		slog.Int("columns", ds.Table.Width()),
		slog.Int("countries", len(ds.Countries)),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

func (p *Processor) merge(ctx context.Context) (*Dataset, []LoadStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tables == nil {
		if _, err := p.loadLocked(ctx); err != nil {
			return nil, nil, err
		}
	}
	if len(p.tables) == 0 {
		return nil, nil, fmt.Errorf("no datasets loaded")
	}

	merged, err := Merge(p.tables[0], p.tables[1:]...)
	if err != nil {
		return nil, p.stats, err
	}
	if err := Derive(merged); err != nil {
		return nil, p.stats, err
	}

	fp, err := Fingerprint(p.dataDir, p.loader.Specs())
	if err != nil {
		p.logger.WarnContext(ctx, "Could not fingerprint inputs", slog.String("error", err.Error()))
	}

	p.merged = &Dataset{
		Table:       merged,
		Catalog:     BuildCatalog(merged),
		Countries:   CountryList(merged),
		LoadedAt:    time.Now().UTC(),
		Fingerprint: fp,
		Stats:       p.stats,
	}
	return p.merged, p.stats, nil
}

// Dataset returns the last merged dataset, or nil before MergeDatasets succeeds.
func (p *Processor) Dataset() *Dataset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.merged
}

// MetricInfo returns the catalog of the merged dataset, merging first when needed.
func (p *Processor) MetricInfo(ctx context.Context) (Catalog, error) {
	ds, err := p.ensureMerged(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return ds.Catalog, nil
}

// Countries returns the country list of the merged dataset, merging first when needed.
func (p *Processor) Countries(ctx context.Context) ([]string, error) {
	ds, err := p.ensureMerged(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Countries, nil
}

// CountryList returns the sorted, unique, non-blank country names of t
func CountryList(t *Table) []string {
	key, ok := t.Column(KeyColumn)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, key.Len())
	out := make([]string, 0, key.Len())
	for _, c := range key.Strings {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SaveProcessedData writes merged_data.csv and metrics_info.json to dir, creating it.
func (p *Processor) SaveProcessedData(ctx context.Context, dir string) error {
	ds, err := p.ensureMerged(ctx)
	if err != nil {
		return err
	}
	return SaveDataset(ds, dir)
}

// SaveDataset writes the merged CSV and the catalog JSON of ds to dir.
func SaveDataset(ds *Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if _, err := exporter.NewCSVWriter(dir).WriteCSV(config.MergedDataFile, exporter.WriteOptions{
		Headers: ds.Table.Names(),
		Records: ds.Table.Records(),
	}); err != nil {
		return fmt.Errorf("failed to save merged data: %w", err)
	}

	if _, err := exporter.NewJSONWriter(dir).Write(config.MetricsInfoFile, ds.Catalog); err != nil {
		return fmt.Errorf("failed to save metrics info: %w", err)
	}

	slog.Info("Saved processed data",
		slog.String("directory", filepath.Clean(dir)),
		slog.Int("rows", ds.Table.Len()))
	return nil
}

func (p *Processor) ensureMerged(ctx context.Context) (*Dataset, error) {
	if ds := p.Dataset(); ds != nil {
		return ds, nil
	}
	return p.MergeDatasets(ctx)
}
