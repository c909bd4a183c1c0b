package dataprocessing

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Real_GDP_PPP_billion_USD", "Real Gdp Ppp Billion Usd"},
		{"internet_users_total", "Internet Users Total"},
		{"carbon_dioxide_emissions_Mt", "Carbon Dioxide Emissions Mt"},
		{"Area_Total", "Area Total"},
		{"co2_per_capita", "Co2 Per Capita"},
		{"3d_printers", "3D Printers"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MetricLabel(tt.in))
	}
}

func TestBuildCatalog(t *testing.T) {
	table := mustTable(t, "merged",
		NewTextColumn(KeyColumn, []string{"France", "Japan", "Atlantis"}),
		NewNumericColumn("Area_Total", []float64{643801, 377915, nan()}),
		NewNumericColumn("Land_Area", []float64{nan(), nan(), nan()}),
		NewTextColumn("Total_Population", []string{"a", "b", "c"}),
	)

	cat := BuildCatalog(table)
	require.Len(t, cat.Domains, 6)
	assert.Equal(t, DomainNames(), []string{"Geography", "Demographics", "Economy", "Energy", "Infrastructure", "Communications"})

	geo := cat.Domains[0]
	require.Len(t, geo.Metrics, 2)
	assert.Equal(t, MetricInfo{Name: "Area_Total", Label: "Area Total", Min: 377915, Max: 643801, Mean: 510858}, geo.Metrics[0])
	assert.Equal(t, MetricInfo{Name: "Land_Area", Label: "Land Area"}, geo.Metrics[1], "all-null column reports zeros")

	demo, ok := cat.Domain("demographics")
	require.True(t, ok)
	assert.Empty(t, demo.Metrics, "text columns are not metrics")
	assert.NotNil(t, demo.Metrics)

	info, domain, ok := cat.Metric("Area_Total")
	require.True(t, ok)
	assert.Equal(t, "Geography", domain)
	assert.Equal(t, "Area Total", info.Label)

	_, _, ok = cat.Metric("Climate")
	assert.False(t, ok)
	assert.Equal(t, 2, cat.MetricCount())
}

func TestCatalog_MarshalJSONKeepsOrder(t *testing.T) {
	cat := Catalog{Domains: []Domain{
		{Name: "Geography", Metrics: []MetricInfo{{Name: "Area_Total", Label: "Area Total", Min: 1, Max: 2, Mean: 1.5}}},
		{Name: "Demographics", Metrics: []MetricInfo{}},
		{Name: "Economy", Metrics: []MetricInfo{}},
	}}

	data, err := json.Marshal(cat)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Geography":[{"name":"Area_Total","label":"Area Total","min":1,"max":2,"mean":1.5}],"Demographics":[],"Economy":[]}`,
		string(data))
}
