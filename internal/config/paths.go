package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths is the resolved, absolute form of DataConfig.
// Every component asks Paths for file locations instead of joining strings itself.
type Paths struct {
	BaseDir      string
	DataDir      string
	ProcessedDir string
	ExportDir    string
	LogsDir      string
	SnapshotFile string

	MergedDataCSV   string
	MetricsInfoJSON string
}

// ResolvePaths turns the configured directories into absolute paths.
// Relative entries are resolved against BaseDir, which defaults to the working directory.
func ResolvePaths(cfg DataConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	processed := resolve(cfg.ProcessedDir, DefaultProcessedDir)
	return &Paths{
		BaseDir:         base,
		DataDir:         resolve(cfg.DataDir, DefaultDataDir),
		ProcessedDir:    processed,
		ExportDir:       resolve(cfg.ExportDir, DefaultExportDir),
		LogsDir:         resolve(cfg.LogsDir, DefaultLogsDir),
		SnapshotFile:    resolve(cfg.SnapshotFile, DefaultSnapshotFile),
		MergedDataCSV:   filepath.Join(processed, MergedDataFile),
		MetricsInfoJSON: filepath.Join(processed, MetricsInfoFile),
	}, nil
}

// EnsureDirectories creates the output directories. The data directory is an input
// and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ProcessedDir,
		p.ExportDir,
		p.LogsDir,
		filepath.Dir(p.SnapshotFile),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetDataFilePath returns the path of an input CSV
func (p *Paths) GetDataFilePath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// LogPathResolution logs the resolved layout at startup
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("processed", p.ProcessedDir),
			slog.String("exports", p.ExportDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("snapshot", p.SnapshotFile),
			slog.String("merged_csv", p.MergedDataCSV),
			slog.String("metrics_info", p.MetricsInfoJSON),
		),
		slog.Bool("data_dir_exists", FileExists(p.DataDir)),
	)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
