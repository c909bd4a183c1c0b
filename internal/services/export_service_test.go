package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/exporter"
	"globalinsights/internal/snapshot"
	"globalinsights/pkg/contracts/events"
)

func newTestExportService(t *testing.T, publisher EventPublisher) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewExportService(newTestService(t), dir, publisher, nil, nil), dir
}

func TestExportService_Formats(t *testing.T) {
	tests := []struct {
		format string
		file   string
	}{
		{FormatCSV, "global_insights_data.csv"},
		{FormatExcel, "global_insights_data.xlsx"},
		{FormatJSON, "global_insights_data.json"},
		{FormatDictionary, "data_dictionary.json"},
		{FormatSummary, "summary_report.json"},
		{FormatSnapshot, "countries_snapshot.db"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			svc, dir := newTestExportService(t, nil)

			path, err := svc.Export(context.Background(), tt.format, ExportOptions{})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.file), path)
			assert.FileExists(t, path)
		})
	}
}

func TestExportService_CSV(t *testing.T) {
	svc, _ := newTestExportService(t, nil)

	path, err := svc.Export(context.Background(), FormatCSV, ExportOptions{FileName: "countries", BOM: true})
	require.NoError(t, err)
	assert.Equal(t, "countries.csv", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "\ufeffCountry,Real_GDP_per_Capita_USD,Total_Population,"))
	assert.Contains(t, text, "Brazil,18700,,")
}

func TestExportService_Excel(t *testing.T) {
	svc, _ := newTestExportService(t, nil)

	path, err := svc.Export(context.Background(), FormatExcel, ExportOptions{})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exporter.DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Country", rows[0][0])
	assert.Equal(t, "France", rows[1][0])
}

func TestExportService_JSONRecords(t *testing.T) {
	svc, _ := newTestExportService(t, nil)

	path, err := svc.Export(context.Background(), FormatJSON, ExportOptions{})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(content, &records))
	require.Len(t, records, 5)
	assert.Equal(t, "France", records[0]["Country"])
	assert.Nil(t, records[4]["Total_Population"])

	first := strings.Index(string(content), `"Country"`)
	second := strings.Index(string(content), `"Real_GDP_per_Capita_USD"`)
	assert.Less(t, first, second, "columns keep table order")
}

func TestExportService_Snapshot(t *testing.T) {
	svc, _ := newTestExportService(t, nil)

	path, err := svc.Export(context.Background(), FormatSnapshot, ExportOptions{FileName: "snap"})
	require.NoError(t, err)

	ds, err := snapshot.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Table.Len())
	assert.Equal(t, "fp-1", ds.Fingerprint)
}

func TestExportService_InvalidInput(t *testing.T) {
	svc, _ := newTestExportService(t, nil)
	ctx := context.Background()

	_, err := svc.Export(ctx, "pdf", ExportOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Export(ctx, FormatCSV, ExportOptions{FileName: "../escape"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportService_NotLoaded(t *testing.T) {
	svc := NewExportService(NewDatasetService(nil, nil), t.TempDir(), nil, nil, nil)

	_, err := svc.Export(context.Background(), FormatCSV, ExportOptions{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestExportService_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	svc := NewExportService(newTestService(t), filepath.Join(blocker, "exports"), nil, nil, nil)
	_, err := svc.Export(context.Background(), FormatJSON, ExportOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}

func TestExportService_List(t *testing.T) {
	svc, dir := newTestExportService(t, nil)
	ctx := context.Background()

	files, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = svc.Export(ctx, FormatCSV, ExportOptions{})
	require.NoError(t, err)
	_, err = svc.Export(ctx, FormatDictionary, ExportOptions{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	files, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)

	byName := map[string]string{}
	for _, f := range files {
		byName[f.Name] = f.Extension
		assert.Positive(t, f.Size)
		assert.False(t, f.ModifiedAt.IsZero())
	}
	assert.Equal(t, map[string]string{
		"global_insights_data.csv": "csv",
		"data_dictionary.json":     "json",
	}, byName)
}

func TestExportService_PublishesCompletion(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("Broadcast", string(events.MessageTypeExportCompleted), mock.MatchedBy(func(e events.ExportCompleted) bool {
		return e.Format == FormatDictionary && strings.HasSuffix(e.Path, "data_dictionary.json")
	})).Once()

	svc, _ := newTestExportService(t, publisher)
	_, err := svc.Export(context.Background(), FormatDictionary, ExportOptions{})
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestSummaryReport(t *testing.T) {
	ds := newTestDataset(t)

	report := SummaryReport(ds, []string{gdpMetric, "Continent", "Happiness"})
	assert.Equal(t, 1, report.Len())

	out, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	gdp := decoded[gdpMetric]
	assert.Equal(t, 5.0, gdp["count"])
	assert.Equal(t, 36600.0, gdp["mean"])
	assert.Equal(t, 46100.0, gdp["median"])
	assert.Equal(t, 5000.0, gdp["min"])
	assert.Equal(t, 58000.0, gdp["max"])
	assert.Equal(t, 18700.0, gdp["q25"])
	assert.Equal(t, 55200.0, gdp["q75"])

	all := SummaryReport(ds, nil)
	assert.Equal(t, 3, all.Len())
}
