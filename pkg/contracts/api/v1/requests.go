// Package api contains API contract definitions for the Global Insights Explorer.
// Version v1 represents the current stable API version.
package api

// Common request parameters

// FilterRequest narrows row-level views by continent and development level.
// An empty list means no filter.
type FilterRequest struct {
	Continents        []string `json:"continents,omitempty" query:"continent"`
	DevelopmentLevels []string `json:"development_levels,omitempty" query:"development_level"`
}

// Comparison API Requests

// CompareRequest selects the countries and metrics for the radar and heatmap views
type CompareRequest struct {
	Countries []string `json:"countries" validate:"required,min=2,dive,required"`
	Metrics   []string `json:"metrics" validate:"required,min=1,dive,required"`
}

// Correlation API Requests

// CorrelationRequest selects the two axes of a scatter plot
type CorrelationRequest struct {
	X       string `json:"x" validate:"required"`
	Y       string `json:"y" validate:"required"`
	ColorBy string `json:"color_by,omitempty"`
	SizeBy  string `json:"size_by,omitempty"`
}

// MatrixRequest selects the metrics of a correlation matrix
type MatrixRequest struct {
	Metrics []string `json:"metrics" validate:"required,min=2,dive,required"`
}

// Analytics API Requests

// CompositeRequest builds a weighted composite index. Weights default to equal shares.
type CompositeRequest struct {
	Metrics []string  `json:"metrics" validate:"required,min=1,dive,required"`
	Weights []float64 `json:"weights,omitempty" validate:"omitempty,dive,gte=0"`
	Limit   int       `json:"limit,omitempty" validate:"omitempty,min=1,max=250"`
}

// RankingRequest represents the query parameters of the rankings endpoint
type RankingRequest struct {
	Limit int    `json:"n" query:"n" validate:"omitempty,min=1"`
	Order string `json:"order" query:"order" validate:"omitempty,oneof=asc desc"`
}

// OutlierRequest represents the query parameters of the outliers endpoint
type OutlierRequest struct {
	Method    string  `json:"method" query:"method" validate:"omitempty,oneof=iqr zscore"`
	Threshold float64 `json:"threshold" query:"threshold" validate:"omitempty,gt=0"`
}

// Export API Requests

// ExportRequest configures a file export. Format comes from the URL.
type ExportRequest struct {
	FileName string   `json:"file_name,omitempty" validate:"omitempty,max=64,filename"`
	Metrics  []string `json:"metrics,omitempty" validate:"omitempty,dive,required"`
	BOM      bool     `json:"bom,omitempty"`
}

// ExportFormats lists the formats accepted by the export endpoint
var ExportFormats = []string{"csv", "xlsx", "json", "dictionary", "summary", "snapshot"}
