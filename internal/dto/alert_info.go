package dto

import (
	"encoding/json"
	"time"
)

// AlertInfo represents metadata about a stored alert for the gallery.
type AlertInfo struct {
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
	Classes   []string  `json:"classes"`
	Size      int64     `json:"size"`
}

// MarshalJSON customizes JSON output for AlertInfo to format date and time-of-day.
func (a AlertInfo) MarshalJSON() ([]byte, error) {
	type Alias AlertInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      a.Date.Format("02-01-2006"),
		TimeOfDay: a.TimeOfDay.Format("15:04:05"),
		Alias:     (Alias)(a),
	})
}
