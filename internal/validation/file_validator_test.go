package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalinsights/internal/dataprocessing"
	"globalinsights/internal/shared/testutil"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	specs := dataprocessing.DefaultDatasets()

	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		wantErr       bool
		errorContains []string
	}{
		{
			name: "complete fixture set",
			setup: func(t *testing.T) string {
				return testutil.WriteCountryFixtures(t, t.TempDir())
			},
		},
		{
			name: "non-existent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantErr:       true,
			errorContains: []string{"does not exist"},
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "data.csv")
				testutil.WriteFile(t, path, "Country\n")
				return path
			},
			wantErr:       true,
			errorContains: []string{"is not a directory"},
		},
		{
			name: "every problem is reported",
			setup: func(t *testing.T) string {
				dir := testutil.WriteCountryFixtures(t, t.TempDir())
				require.NoError(t, os.Remove(filepath.Join(dir, "energy_data.csv")))
				testutil.WriteFile(t, filepath.Join(dir, "economy_data.csv"), "")
				testutil.WriteFile(t, filepath.Join(dir, "transportation_data.csv"), "Nation,roadways_km\nFrance,1\n")
				return dir
			},
			wantErr: true,
			errorContains: []string{
				"dataset energy: file energy_data.csv does not exist",
				"dataset economy: file economy_data.csv is empty",
				"dataset transportation: file transportation_data.csv has no Country column",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateInputDirectory(tt.setup(t), specs)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.errorContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	bom := filepath.Join(dir, "bom.csv")
	testutil.WriteFile(t, bom, "\ufeffCountry,GDP\nFrance,1\n")
	assert.NoError(t, v.ValidateCSVFile(bom))

	txt := filepath.Join(dir, "data.txt")
	testutil.WriteFile(t, txt, "Country\n")
	assert.ErrorContains(t, v.ValidateCSVFile(txt), "not a CSV file")

	quoted := filepath.Join(dir, "broken.csv")
	testutil.WriteFile(t, quoted, "\"Country,GDP\n")
	assert.ErrorContains(t, v.ValidateCSVFile(quoted), "unreadable header")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write test file must be removed")

	file := filepath.Join(t.TempDir(), "file")
	testutil.WriteFile(t, file, "x")
	assert.Error(t, v.ValidateOutputDirectory(file))
}
