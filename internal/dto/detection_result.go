package dto

// DetectionResult is one detected object as returned to the client.
// Confidence is an integer percentage; BBox is [x1, y1, x2, y2] in pixels.
type DetectionResult struct {
	Class      string `json:"class"`
	Confidence int    `json:"confidence"`
	BBox       [4]int `json:"bbox"`
}
