package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"globalinsights/internal/config"
	"globalinsights/internal/dataprocessing"
	"globalinsights/internal/infrastructure"
	"globalinsights/internal/services"
	"globalinsights/internal/snapshot"
	"globalinsights/internal/validation"
)

// options are the parsed command line flags
type options struct {
	inDir    string
	outDir   string
	xlsx     bool
	snapshot bool
	summary  bool
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.inDir, "in", "", "directory holding the country CSVs (defaults to the configured data dir)")
	fs.StringVar(&opts.outDir, "out", "", "output directory (defaults to the configured processed dir)")
	fs.BoolVar(&opts.xlsx, "xlsx", false, "also write an Excel workbook")
	fs.BoolVar(&opts.snapshot, "snapshot", false, "also write the SQLite snapshot")
	fs.BoolVar(&opts.summary, "summary", false, "also write the summary report")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// datasetSource serves an already merged dataset to the export service
type datasetSource struct {
	ds *dataprocessing.Dataset
}

func (s datasetSource) Dataset(context.Context) (*dataprocessing.Dataset, error) {
	return s.ds, nil
}

// run executes the pipeline once and writes the requested artifacts. It returns the
// paths it wrote.
func run(ctx context.Context, opts options, cfg *config.Config, logger *slog.Logger) ([]string, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	logger = infrastructure.WithComponent(logger, "processor")

	paths, err := config.ResolvePaths(cfg.Data)
	if err != nil {
		return nil, err
	}
	if opts.inDir == "" {
		opts.inDir = paths.DataDir
	}
	snapshotPath := paths.SnapshotFile
	if opts.outDir == "" {
		opts.outDir = paths.ProcessedDir
	} else {
		snapshotPath = filepath.Join(opts.outDir, filepath.Base(paths.SnapshotFile))
	}

	logger.InfoContext(ctx, "Starting data processing",
		slog.String("input_dir", opts.inDir),
		slog.String("output_dir", opts.outDir),
		slog.Bool("xlsx", opts.xlsx),
		slog.Bool("snapshot", opts.snapshot),
		slog.Bool("summary", opts.summary))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(opts.inDir, dataprocessing.DefaultDatasets()); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if err := validator.ValidateOutputDirectory(opts.outDir); err != nil {
		return nil, err
	}

	start := time.Now()
	processor := dataprocessing.NewProcessor(opts.inDir, dataprocessing.WithLogger(logger))
	ds, err := processor.MergeDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("merge datasets: %w", err)
	}

	if err := dataprocessing.SaveDataset(ds, opts.outDir); err != nil {
		return nil, err
	}
	written := []string{
		filepath.Join(opts.outDir, config.MergedDataFile),
		filepath.Join(opts.outDir, config.MetricsInfoFile),
	}

	exports := services.NewExportService(datasetSource{ds: ds}, opts.outDir, nil, nil, logger)
	extra := []struct {
		enabled bool
		format  string
	}{
		{opts.xlsx, services.FormatExcel},
		{opts.summary, services.FormatSummary},
	}
	for _, e := range extra {
		if !e.enabled {
			continue
		}
		path, err := exports.Export(ctx, e.format, services.ExportOptions{})
		if err != nil {
			return written, fmt.Errorf("write %s: %w", e.format, err)
		}
		written = append(written, path)
	}

	// the server reads this file at startup when load_from_snapshot is set
	if opts.snapshot {
		if err := snapshot.Save(ctx, snapshotPath, ds); err != nil {
			return written, fmt.Errorf("write snapshot: %w", err)
		}
		written = append(written, snapshotPath)
	}

	logger.InfoContext(ctx, "Data processing completed",
		slog.Int("rows", ds.Table.Len()),
		slog.Int("columns", len(ds.Table.Names())),
		slog.Int("files", len(written)),
		slog.Duration("duration", time.Since(start)))
	return written, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}

	// stdout carries the written paths
	logger := infrastructure.NewLoggerWithWriter(os.Stderr, cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	written, err := run(ctx, opts, cfg, logger)
	stop()
	if err != nil {
		infrastructure.WithError(logger, err).Error("Data processing failed")
		os.Exit(1)
	}

	for _, path := range written {
		fmt.Println(path)
	}
}
