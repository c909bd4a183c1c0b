package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, name string, cols ...*Column) *Table {
	t.Helper()
	table, err := NewTable(name, cols...)
	require.NoError(t, err)
	return table
}

func TestMerge(t *testing.T) {
	base := mustTable(t, "geography",
		NewTextColumn(KeyColumn, []string{"France", "Japan", "", "Kenya"}),
		NewNumericColumn("Area_Total", []float64{643801, 377915, 1, 580367}),
		NewNumericColumn("Last_Updated", []float64{2024, 2024, 2024, 2024}),
	)
	economy := mustTable(t, "economy",
		NewTextColumn(KeyColumn, []string{"Japan", "France", "Japan", ""}),
		NewNumericColumn("GDP", []float64{46100, 55200, 46000, 99}),
		NewNumericColumn("Last_Updated", []float64{2023, 2023, 2022, 2023}),
	)
	gov := mustTable(t, "government",
		NewTextColumn(KeyColumn, []string{"Kenya"}),
		NewTextColumn("Government_Type", []string{"presidential republic"}),
	)

	merged, err := Merge(base, economy, gov)
	require.NoError(t, err)

	assert.Equal(t, []string{KeyColumn, "Area_Total", "Last_Updated", "GDP", "Last_Updated_economy", "Government_Type"}, merged.Names())
	require.Equal(t, 5, merged.Len())

	key, _ := merged.Column(KeyColumn)
	assert.Equal(t, []string{"France", "Japan", "Japan", "", "Kenya"}, key.Strings, "base order kept, duplicates expanded in right order")

	gdp, _ := merged.Numeric("GDP")
	assert.Equal(t, 55200.0, gdp.Floats[0])
	assert.Equal(t, 46100.0, gdp.Floats[1])
	assert.Equal(t, 46000.0, gdp.Floats[2])
	assert.True(t, gdp.IsNull(3), "blank keys never match")
	assert.True(t, gdp.IsNull(4), "unmatched rows get nulls")

	suffixed, ok := merged.Numeric("Last_Updated_economy")
	require.True(t, ok)
	assert.Equal(t, 2022.0, suffixed.Floats[2])

	govType, _ := merged.Column("Government_Type")
	assert.Equal(t, Text, govType.Kind)
	assert.Equal(t, "presidential republic", govType.Strings[4])
	assert.Equal(t, "", govType.Strings[0])
}

func TestMerge_LeavesBaseUntouched(t *testing.T) {
	tests := []struct {
		name   string
		others []*Table
	}{
		{"no other tables", nil},
		{"only nil tables", []*Table{nil, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := mustTable(t, "geography",
				NewTextColumn(KeyColumn, []string{"France", "Japan"}),
				NewNumericColumn("Area_Total", []float64{643801, 377915}),
			)

			merged, err := Merge(base, tt.others...)
			require.NoError(t, err)
			assert.Equal(t, "merged", merged.Name)
			assert.Equal(t, base.Names(), merged.Names())

			require.NoError(t, merged.AddColumn(NewNumericColumn("Density", []float64{1, 2})))
			assert.Equal(t, "geography", base.Name)
			assert.False(t, base.Has("Density"))
		})
	}
}

func TestMerge_Errors(t *testing.T) {
	noKey := mustTable(t, "broken", NewTextColumn("Name", []string{"x"}))
	base := mustTable(t, "geography", NewTextColumn(KeyColumn, []string{"France"}))

	_, err := Merge(nil)
	assert.Error(t, err)

	_, err = Merge(noKey)
	assert.Error(t, err)

	_, err = Merge(base, noKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewTable_LengthMismatch(t *testing.T) {
	_, err := NewTable("bad",
		NewTextColumn(KeyColumn, []string{"a", "b"}),
		NewNumericColumn("x", []float64{1}),
	)
	assert.Error(t, err)
}

func TestTable_Records(t *testing.T) {
	table := mustTable(t, "t",
		NewTextColumn(KeyColumn, []string{"France", "Atlantis"}),
		NewNumericColumn("Area_Total", []float64{643801, nan()}),
	)
	assert.Equal(t, [][]string{{"France", "643801"}, {"Atlantis", ""}}, table.Records())
	assert.Equal(t, map[string]any{KeyColumn: "Atlantis", "Area_Total": nil}, table.Record(1))
	assert.Equal(t, []any{"France", 643801.0}, table.Row(0))
}
