package api

// StatusSuccess is the status value of every successful response
const StatusSuccess = "success"

// Response is the envelope of every successful API response
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
	Count  *int   `json:"count,omitempty"`
}

// NewResponse wraps data in a success envelope
func NewResponse(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// NewListResponse wraps a list and reports its length
func NewListResponse(data any, count int) Response {
	return Response{Status: StatusSuccess, Data: data, Count: &count}
}

// MetricOptionsResponse is the payload of GET /api/metrics/options
type MetricOptionsResponse struct {
	Options  any    `json:"options"`
	DefaultX string `json:"default_x"`
	DefaultY string `json:"default_y"`
}

// ExportResponse describes a written export file
type ExportResponse struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}
