package validation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"globalinsights/internal/dataprocessing"
)

// FileValidator checks the pipeline's input and output locations before a run, so
// every problem is reported at once instead of failing on the first missing table.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputDirectory checks that dir exists and holds a readable CSV with a
// Country column for every dataset. The returned error joins one error per problem.
func (v *FileValidator) ValidateInputDirectory(dir string, specs []dataprocessing.DatasetSpec) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory", slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}

	var errs []error
	for _, spec := range specs {
		if err := v.ValidateCSVFile(filepath.Join(dir, spec.File)); err != nil {
			errs = append(errs, fmt.Errorf("dataset %s: %w", spec.Name, err))
		}
	}
	if len(errs) > 0 {
		v.logger.Error("Input directory is incomplete",
			slog.String("directory", dir),
			slog.Int("problems", len(errs)),
			slog.Int("datasets", len(specs)))
		return errors.Join(errs...)
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("datasets", len(specs)))
	return nil
}

// ValidateOutputDirectory ensures the output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateCSVFile checks that path is a readable CSV whose header has the Country key
func (v *FileValidator) ValidateCSVFile(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("%s is not a CSV file", filepath.Base(path))
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("file %s is empty", filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("file %s has an unreadable header: %w", filepath.Base(path), err)
	}

	for _, col := range header {
		// Excel exports prefix the first cell with a BOM
		if strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) == dataprocessing.KeyColumn {
			v.logger.Debug("CSV file validated",
				slog.String("file", path),
				slog.Int("columns", len(header)))
			return nil
		}
	}
	return fmt.Errorf("file %s has no %s column", filepath.Base(path), dataprocessing.KeyColumn)
}
