package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet that receives exported rows
const DefaultSheet = "Data"

// ExcelWriter writes tabular data to .xlsx workbooks
type ExcelWriter struct {
	dir string
}

// NewExcelWriter creates an Excel writer that resolves relative file names against dir
func NewExcelWriter(dir string) *ExcelWriter {
	return &ExcelWriter{dir: dir}
}

// WriteSheet writes headers and rows to sheet in a new workbook at filePath. The header
// row is bold and frozen. Nil cells are left empty.
func (w *ExcelWriter) WriteSheet(filePath, sheet string, headers []string, rows [][]any) (string, error) {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) && w.dir != "" {
		fullPath = filepath.Join(w.dir, filePath)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to create stream writer: %w", err)
	}

	boldID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("failed to freeze header: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: boldID, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Debug("Wrote Excel workbook",
		slog.String("path", fullPath),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)))
	return fullPath, nil
}
