package model

// Detection represents a detected object recorded with an alert.
type Detection struct {
	ID         int64  `json:"id"`
	AlertID    int64  `json:"alert_id"`
	ClassName  string `json:"class_name"`
	Confidence int    `json:"confidence"`
	X1         int    `json:"x1"`
	Y1         int    `json:"y1"`
	X2         int    `json:"x2"`
	Y2         int    `json:"y2"`
}
