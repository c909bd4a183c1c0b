// Package domain holds the view models returned by the dataset queries.
// Optional numbers are pointers so that null reaches the client as JSON null.
package domain

import "time"

// DatasetSummary describes the dataset currently being served
type DatasetSummary struct {
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Countries   int       `json:"countries"`
	Metrics     int       `json:"metrics"`
	LoadedAt    time.Time `json:"loaded_at"`
	Fingerprint string    `json:"fingerprint"`
}

// CountryRecord is one merged row keyed by column name
type CountryRecord map[string]any

// MetricOption is one entry of the metric picker
type MetricOption struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// FilterOptions lists the values accepted by the row filters
type FilterOptions struct {
	Continents        []string `json:"continents"`
	DevelopmentLevels []string `json:"development_levels"`
}

// MetricPoint is one row of the map view
type MetricPoint struct {
	Country          string   `json:"country"`
	Value            *float64 `json:"value"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Continent        string   `json:"continent"`
	DevelopmentLevel string   `json:"development_level"`
}

// RegionalValue is the aggregate of a metric over one continent
type RegionalValue struct {
	Continent string  `json:"continent"`
	Value     float64 `json:"value"`
	Countries int     `json:"countries"`
}

// RadarSeries is one country trace of the comparison radar
type RadarSeries struct {
	Country    string     `json:"country"`
	Normalized []float64  `json:"normalized"`
	Raw        []*float64 `json:"raw"`
}

// Comparison is the result of comparing several countries across metrics
type Comparison struct {
	Countries []string      `json:"countries"`
	Metrics   []string      `json:"metrics"`
	Labels    []string      `json:"labels"`
	Radar     []RadarSeries `json:"radar"`
	// Heatmap is indexed [country][metric]; nulls are reported as 0
	Heatmap [][]float64 `json:"heatmap"`
}

// ScatterPoint is one country on the correlation scatter
type ScatterPoint struct {
	Country string   `json:"country"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Group   string   `json:"group"`
	Size    float64  `json:"size"`
	RawSize *float64 `json:"raw_size,omitempty"`
}

// Trendline is a least-squares fit sampled across the x range
type Trendline struct {
	Intercept float64   `json:"intercept"`
	Slope     float64   `json:"slope"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
}

// Scatter is the result of correlating two metrics
type Scatter struct {
	X         string         `json:"x"`
	Y         string         `json:"y"`
	ColorBy   string         `json:"color_by"`
	SizeBy    string         `json:"size_by,omitempty"`
	Points    []ScatterPoint `json:"points"`
	R         *float64       `json:"r"`
	Trendline *Trendline     `json:"trendline,omitempty"`
}

// CorrelationMatrix is a symmetric Pearson matrix. Cells are null when fewer
// than two rows are paired.
type CorrelationMatrix struct {
	Metrics []string     `json:"metrics"`
	Labels  []string     `json:"labels"`
	Values  [][]*float64 `json:"values"`
}

// HierarchyNode is one node of the Continent > Development_Level > Country tree
type HierarchyNode struct {
	Name     string           `json:"name"`
	Value    float64          `json:"value"`
	Children []*HierarchyNode `json:"children,omitempty"`
}

// StatsCards are the headline figures shown above the dashboard
type StatsCards struct {
	TotalCountries   int      `json:"total_countries"`
	AvgGDPPerCapita  *float64 `json:"avg_gdp_per_capita"`
	TotalPopulation  *float64 `json:"total_population"`
	TotalInternet    *float64 `json:"total_internet_users"`
	FormattedGDP     string   `json:"formatted_gdp"`
	FormattedPop     string   `json:"formatted_population"`
	FormattedNetUser string   `json:"formatted_internet_users"`
}

// RankedCountry is one entry of a ranking or composite index
type RankedCountry struct {
	Rank    int     `json:"rank"`
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// Outliers lists the countries flagged for a metric
type Outliers struct {
	Metric    string          `json:"metric"`
	Method    string          `json:"method"`
	Threshold float64         `json:"threshold"`
	Countries []RankedCountry `json:"countries"`
}

// MetricStats is the summary of one metric. Undefined statistics are null.
type MetricStats struct {
	Metric   string   `json:"metric"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean"`
	Median   *float64 `json:"median"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Q25      *float64 `json:"q25"`
	Q75      *float64 `json:"q75"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
}

// ExportFile is one artifact in the export directory
type ExportFile struct {
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}
