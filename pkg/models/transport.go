package models

// AnalyzeURLRequest asks the service to fetch and analyze a remote image.
// URL may use the http, https, azblob or s3 scheme.
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by the liveness endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}
