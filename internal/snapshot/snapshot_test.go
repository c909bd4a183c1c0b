package snapshot

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalinsights/internal/dataprocessing"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/shared/testutil"
)

func smallDataset(t *testing.T) *dataprocessing.Dataset {
	t.Helper()
	table, err := dataprocessing.NewTable("merged",
		dataprocessing.NewTextColumn("Country", []string{"France", "Japan", ""}),
		dataprocessing.NewNumericColumn("Real_GDP_per_Capita_USD", []float64{55200, math.NaN(), 1000}),
		dataprocessing.NewTextColumn("Continent", []string{"Europe", "", "Other"}),
	)
	require.NoError(t, err)
	return &dataprocessing.Dataset{
		Table:       table,
		Catalog:     dataprocessing.BuildCatalog(table),
		Countries:   dataprocessing.CountryList(table),
		LoadedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Fingerprint: "abc123",
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "countries.db")
	ds := smallDataset(t)

	require.NoError(t, Save(ctx, path, ds))
	got, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, ds.Table.Names(), got.Table.Names())
	assert.Equal(t, 3, got.Table.Len())
	assert.Equal(t, "abc123", got.Fingerprint)
	assert.True(t, ds.LoadedAt.Equal(got.LoadedAt))
	assert.Equal(t, []string{"France"}, got.Countries[:1])

	gdp, ok := got.Table.Numeric("Real_GDP_per_Capita_USD")
	require.True(t, ok)
	assert.Equal(t, 55200.0, gdp.Floats[0])
	assert.True(t, gdp.IsNull(1))
	assert.Equal(t, 1000.0, gdp.Floats[2])

	cont, ok := got.Table.Column("Continent")
	require.True(t, ok)
	assert.Equal(t, dataprocessing.Text, cont.Kind)
	assert.Equal(t, []string{"Europe", "", "Other"}, cont.Strings)

	info, domain, ok := got.Catalog.Metric("Real_GDP_per_Capita_USD")
	require.True(t, ok)
	assert.Equal(t, "Economy", domain)
	assert.Equal(t, 1000.0, info.Min)
	assert.Equal(t, 55200.0, info.Max)
	assert.Len(t, got.Catalog.Domains, len(dataprocessing.DomainNames()))
}

func TestSave_ReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "countries.db")

	require.NoError(t, Save(ctx, path, smallDataset(t)))
	require.NoError(t, Save(ctx, path, smallDataset(t)))

	db, err := sql.Open(driverName, path)
	require.NoError(t, err)
	defer db.Close()

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM countries`).Scan(&rows))
	assert.Equal(t, 3, rows)

	var metrics int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metrics`).Scan(&metrics))
	assert.Equal(t, 1, metrics)
}

func TestSave_ProcessedFixtures(t *testing.T) {
	ctx := context.Background()
	dataDir := testutil.WriteCountryFixtures(t, t.TempDir())
	logger, _ := testutil.NewTestLogger(t)
	p := dataprocessing.NewProcessor(dataDir, dataprocessing.WithLogger(logger))
	ds, err := p.MergeDatasets(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "countries.db")
	require.NoError(t, Save(ctx, path, ds))

	got, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ds.Table.Len(), got.Table.Len())
	assert.Equal(t, ds.Table.Width(), got.Table.Width())
	assert.Equal(t, ds.Countries, got.Countries)
	assert.Equal(t, ds.Catalog.MetricCount(), got.Catalog.MetricCount())
	assert.Equal(t, ds.Table.Records(), got.Table.Records())
}

func TestSave_NilDataset(t *testing.T) {
	err := Save(context.Background(), filepath.Join(t.TempDir(), "x.db"), nil)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestLoad_UnknownFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "countries.db")
	require.NoError(t, Save(ctx, path, smallDataset(t)))

	db, err := sql.Open(driverName, path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE meta SET value = 'v0' WHERE name = 'format_version'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Load(ctx, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Contains(t, err.Error(), "unsupported snapshot format")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"Country"`, quoteIdent("Country"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
