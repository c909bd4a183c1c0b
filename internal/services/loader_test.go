package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"globalinsights/internal/config"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/shared/testutil"
	"globalinsights/internal/snapshot"
)

func TestPipelineLoader_Load(t *testing.T) {
	dir := testutil.WriteCountryFixtures(t, t.TempDir())
	logger, _ := testutil.NewTestLogger(t)

	ds, err := NewPipelineLoader(dir, nil, logger).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Table.Len())
	assert.Equal(t, []string{"Atlantis", "Brazil", "France", "Japan", "Kenya"}, ds.Countries)
	assert.NotEmpty(t, ds.Fingerprint)
}

func TestPipelineLoader_MissingDirectory(t *testing.T) {
	_, err := NewPipelineLoader(filepath.Join(t.TempDir(), "nothing"), nil, nil).Load(context.Background())
	assert.Error(t, err)
}

func TestSnapshotLoader_PrefersSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "countries.db")
	require.NoError(t, snapshot.Save(ctx, path, newTestDataset(t)))

	fallback := new(MockDatasetLoader)
	ds, err := NewSnapshotLoader(path, fallback, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fp-1", ds.Fingerprint)
	fallback.AssertNotCalled(t, "Load", mock.Anything)
}

func TestSnapshotLoader_FallsBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, path string)
	}{
		{
			name:  "missing snapshot",
			setup: func(t *testing.T, path string) {},
		},
		{
			name: "corrupt snapshot",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("not a database"), 0644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "countries.db")
			tt.setup(t, path)

			want := newTestDataset(t)
			fallback := new(MockDatasetLoader)
			fallback.On("Load", mock.Anything).Return(want, nil).Once()

			logger, _ := testutil.NewTestLogger(t)
			got, err := NewSnapshotLoader(path, fallback, logger).Load(context.Background())
			require.NoError(t, err)
			assert.Same(t, want, got)
			fallback.AssertExpectations(t)
		})
	}
}

func TestSnapshotLoader_NoFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.db")

	_, err := NewSnapshotLoader(path, nil, nil).Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestDatasetService_ReloadAfterSnapshotBootstrapRereadsInputs(t *testing.T) {
	ctx := context.Background()
	dir := testutil.WriteCountryFixtures(t, t.TempDir())
	logger, _ := testutil.NewTestLogger(t)
	pipeline := NewPipelineLoader(dir, nil, logger)

	initial, err := pipeline.Load(ctx)
	require.NoError(t, err)
	snapPath := filepath.Join(t.TempDir(), "countries.db")
	require.NoError(t, snapshot.Save(ctx, snapPath, initial))

	economy := filepath.Join(dir, "economy_data.csv")
	raw, err := os.ReadFile(economy)
	require.NoError(t, err)
	edited := strings.Replace(string(raw), `"$55,200"`, `"$60,000"`, 1)
	require.NoError(t, os.WriteFile(economy, []byte(edited), 0644))

	svc := NewDatasetService(pipeline, config.Default(), WithServiceLogger(logger))
	topGDP := func() float64 {
		t.Helper()
		top, err := svc.Rankings(ctx, "Real_GDP_per_Capita_USD", 1, false)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "France", top[0].Country)
		return top[0].Value
	}

	_, err = svc.Bootstrap(ctx, NewSnapshotLoader(snapPath, pipeline, logger))
	require.NoError(t, err)
	assert.Equal(t, 55200.0, topGDP(), "first load comes from the snapshot")

	_, err = svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60000.0, topGDP(), "reload runs the pipeline over the edited CSV")

	for _, name := range testutil.FixtureFiles() {
		require.NoError(t, os.Remove(filepath.Join(dir, name)))
	}
	_, err = svc.Reload(ctx)
	require.Error(t, err, "reload must not fall back to the snapshot")
	assert.Equal(t, 60000.0, topGDP(), "failed reload keeps the served dataset")
}

func TestDatasetService_BootstrapNilLoaderUsesServiceLoader(t *testing.T) {
	loader := new(MockDatasetLoader)
	loader.On("Load", mock.Anything).Return(newTestDataset(t), nil).Once()

	svc := NewDatasetService(loader, config.Default())
	summary, err := svc.Bootstrap(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Rows)
	loader.AssertExpectations(t)
}
