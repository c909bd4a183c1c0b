package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"globalinsights/internal/dataprocessing"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/exporter"
	"globalinsights/internal/files"
	"globalinsights/internal/infrastructure"
	"globalinsights/internal/snapshot"
	"globalinsights/pkg/contracts/domain"
	"globalinsights/pkg/contracts/events"
)

// Export formats
const (
	FormatCSV        = "csv"
	FormatExcel      = "xlsx"
	FormatJSON       = "json"
	FormatDictionary = "dictionary"
	FormatSummary    = "summary"
	FormatSnapshot   = "snapshot"
)

var defaultExportNames = map[string]string{
	FormatCSV:        "global_insights_data",
	FormatExcel:      "global_insights_data",
	FormatJSON:       "global_insights_data",
	FormatDictionary: "data_dictionary",
	FormatSummary:    "summary_report",
	FormatSnapshot:   "countries_snapshot",
}

var exportExtensions = map[string]string{
	FormatCSV:        ".csv",
	FormatExcel:      ".xlsx",
	FormatJSON:       ".json",
	FormatDictionary: ".json",
	FormatSummary:    ".json",
	FormatSnapshot:   ".db",
}

// DatasetSource provides the dataset to export
type DatasetSource interface {
	Dataset(ctx context.Context) (*dataprocessing.Dataset, error)
}

// ExportOptions configures one export
type ExportOptions struct {
	// FileName is the base name without extension. Empty selects the format default.
	FileName string
	// Metrics selects the summary report columns. Empty means every catalogued metric.
	Metrics []string
	// BOM prefixes CSV output with a UTF-8 byte order mark.
	BOM bool
}

// ExportService writes dataset exports into a directory
type ExportService struct {
	source    DatasetSource
	dir       string
	publisher EventPublisher
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewExportService creates an export service writing into dir
func NewExportService(source DatasetSource, dir string, publisher EventPublisher, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		source:    source,
		dir:       dir,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "export_service"),
	}
}

// Dir returns the export directory
func (e *ExportService) Dir() string { return e.dir }

// Export writes the dataset in format and returns the written path
func (e *ExportService) Export(ctx context.Context, format string, opts ExportOptions) (path string, err error) {
	ext, ok := exportExtensions[format]
	if !ok {
		return "", fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, format)
	}
	name := opts.FileName
	if name == "" {
		name = defaultExportNames[format]
	}
	if err := exporter.ValidateFileName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ds, err := e.source.Dataset(ctx)
	if err != nil {
		return "", err
	}

	ctx, span := infrastructure.StartSpan(ctx, "export."+format)
	defer span.End()
	start := time.Now()
	defer func() {
		e.metrics.RecordExport(ctx, format, err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	file := name + ext
	switch format {
	case FormatCSV:
		path, err = e.writeCSV(ds, file, opts.BOM)
	case FormatExcel:
		path, err = e.writeExcel(ds, file)
	case FormatJSON:
		path, err = exporter.NewJSONWriter(e.dir).Write(file, Records(ds.Table))
	case FormatDictionary:
		path, err = exporter.NewJSONWriter(e.dir).Write(file, ds.Catalog)
	case FormatSummary:
		path, err = exporter.NewJSONWriter(e.dir).Write(file, SummaryReport(ds, opts.Metrics))
	case FormatSnapshot:
		path = filepath.Join(e.dir, file)
		err = snapshot.Save(ctx, path, ds)
	}
	if err != nil {
		logServiceError(ctx, "export_service", "export", err, slog.String("format", format))
		return "", apperrors.NewExportError(fmt.Sprintf("%s export failed", format), err).
			WithContext("format", format)
	}

	e.logger.InfoContext(ctx, "Export written",
		slog.String("format", format),
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))

	if e.publisher != nil {
		e.publisher.Broadcast(string(events.MessageTypeExportCompleted), events.ExportCompleted{
			Format: format,
			Path:   path,
		})
	}
	return path, nil
}

// List returns the export artifacts on disk, newest first. Files with extensions no
// format produces are ignored.
func (e *ExportService) List(ctx context.Context) ([]domain.ExportFile, error) {
	exts := make([]string, 0, len(exportExtensions))
	for _, ext := range exportExtensions {
		exts = append(exts, ext)
	}
	found, err := files.NewDiscovery(e.dir).FindByExtensions("", exts...)
	if err != nil {
		logServiceError(ctx, "export_service", "list", err)
		return nil, apperrors.NewStorageError("failed to list exports", err)
	}

	out := make([]domain.ExportFile, len(found))
	for i, f := range found {
		out[i] = domain.ExportFile{
			Name:       f.Name,
			Extension:  f.Ext(),
			Size:       f.Size,
			ModifiedAt: f.ModTime.UTC(),
		}
	}
	return out, nil
}

func (e *ExportService) writeCSV(ds *dataprocessing.Dataset, file string, bom bool) (string, error) {
	return exporter.NewCSVWriter(e.dir).WriteCSV(file, exporter.WriteOptions{
		Headers:   ds.Table.Names(),
		Records:   ds.Table.Records(),
		BOMPrefix: bom,
	})
}

func (e *ExportService) writeExcel(ds *dataprocessing.Dataset, file string) (string, error) {
	rows := make([][]any, ds.Table.Len())
	for i := range rows {
		rows[i] = ds.Table.Row(i)
	}
	return exporter.NewExcelWriter(e.dir).WriteSheet(file, exporter.DefaultSheet, ds.Table.Names(), rows)
}

// Records renders every row as a JSON object in column order, nulls as null
func Records(t *dataprocessing.Table) []*exporter.Object {
	cols := t.Columns()
	out := make([]*exporter.Object, t.Len())
	for i := range out {
		obj := exporter.NewObject(len(cols))
		for _, c := range cols {
			obj.Set(c.Name, c.Value(i))
		}
		out[i] = obj
	}
	return out
}

// SummaryReport describes each requested metric with count, mean, median, std, min,
// max, q25 and q75. Unknown and non-numeric metrics are skipped. No metrics selects
// every catalogued metric.
func SummaryReport(ds *dataprocessing.Dataset, metrics []string) *exporter.Object {
	if len(metrics) == 0 {
		for _, d := range ds.Catalog.Domains {
			for _, m := range d.Metrics {
				metrics = append(metrics, m.Name)
			}
		}
	}

	report := exporter.NewObject(len(metrics))
	for _, name := range metrics {
		col, ok := ds.Table.Numeric(name)
		if !ok {
			continue
		}
		s := dataprocessing.SummaryStats(col.Floats)
		entry := exporter.NewObject(8)
		entry.Set("count", s.Count)
		entry.Set("mean", s.Mean)
		entry.Set("median", s.Median)
		entry.Set("std", s.Std)
		entry.Set("min", s.Min)
		entry.Set("max", s.Max)
		entry.Set("q25", s.Q25)
		entry.Set("q75", s.Q75)
		report.Set(name, entry)
	}
	return report
}
