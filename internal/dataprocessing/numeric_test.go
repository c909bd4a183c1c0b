package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"1,234", 1234, true},
		{"9.99%", 9.99, true},
		{"$1.5 billion", 1.5e9, true},
		{"$1.5billion", 1.5e9, true},
		{"2,345 sq km", 2345, true},
		{"4,853 km", 4853, true},
		{"1.5 million", 1.5e6, true},
		{"58 million", 58e6, true},
		{"2 trillion", 2e12, true},
		{"5 m", 5, true},
		{"290.2 Mt", 290.2, true},
		{"1,500,000 bbl/day", 1500000, true},
		{"12 kW", 12, true},
		{"-0.4%", -0.4, true},
		{"  42  ", 42, true},
		{"abc", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"1e400", 0, false},
		{"about 5 million", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanNumeric(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9*math.Max(1, math.Abs(tt.want)))
			} else {
				assert.True(t, math.IsNaN(got))
			}
		})
	}
}

func TestCleanColumn(t *testing.T) {
	col, nulled := CleanColumn(NewTextColumn("Coastline", []string{"4,853 km", "", "n/a", "nan", "536 km"}))

	require.Equal(t, Numeric, col.Kind)
	assert.Equal(t, "Coastline", col.Name)
	assert.Equal(t, 4853.0, col.Floats[0])
	assert.True(t, col.IsNull(1))
	assert.True(t, col.IsNull(2))
	assert.True(t, col.IsNull(3))
	assert.Equal(t, 536.0, col.Floats[4])
	assert.Equal(t, 1, nulled, "only the unparseable non-blank cell counts")

	already := NewNumericColumn("x", []float64{1})
	same, n := CleanColumn(already)
	assert.Same(t, already, same)
	assert.Zero(t, n)
}

func TestInferColumn(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		wantKind ColumnKind
	}{
		{"all numbers", []string{"2024", "2023", ""}, Numeric},
		{"mixed", []string{"2024", "calendar year"}, Text},
		{"all blank", []string{"", ""}, Text},
		{"units are not inferred", []string{"5 km"}, Text},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferColumn(NewTextColumn("c", tt.values))
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in       string
		lat, lon float64
		ok       bool
	}{
		{"46 00 N, 2 00 E", 46, 2, true},
		{"10 00 S, 55 00 W", -10, -55, true},
		{"33 30 N, 44 15 E", 33.5, 44.25, true},
		{"41 00 S, 174 00 E", -41, 174, true},
		{"somewhere", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lat, lon, ok := ParseCoordinates(tt.in)
			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.True(t, math.IsNaN(lat))
				assert.True(t, math.IsNaN(lon))
				return
			}
			assert.InDelta(t, tt.lat, lat, 1e-9)
			assert.InDelta(t, tt.lon, lon, 1e-9)
		})
	}
}

func TestAddCoordinates(t *testing.T) {
	table, err := NewTable("geography",
		NewTextColumn(KeyColumn, []string{"France", "Atlantis"}),
		NewTextColumn(CoordinatesColumn, []string{"46 00 N, 2 00 E", ""}),
	)
	require.NoError(t, err)
	require.NoError(t, AddCoordinates(table))

	lat, ok := table.Numeric(LatitudeColumn)
	require.True(t, ok)
	lon, ok := table.Numeric(LongitudeColumn)
	require.True(t, ok)
	assert.Equal(t, 46.0, lat.Floats[0])
	assert.Equal(t, 2.0, lon.Floats[0])
	assert.True(t, lat.IsNull(1))
	assert.True(t, lon.IsNull(1))
}
