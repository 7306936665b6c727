package dto

// StreamResponse is the success body of POST /stream.
type StreamResponse struct {
	Success          bool              `json:"success"`
	Detections       []DetectionResult `json:"detections"`
	ProcessedImage   string            `json:"processed_image"`
	Timestamp        string            `json:"timestamp"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
}

// ErrorResponse is the failure body returned with HTTP 500.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
