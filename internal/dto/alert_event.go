package dto

// AlertEvent is broadcast to live viewers whenever an alert is persisted.
type AlertEvent struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	Source     string            `json:"source"`
	Timestamp  string            `json:"timestamp"`
	Detections []DetectionResult `json:"detections"`
}
