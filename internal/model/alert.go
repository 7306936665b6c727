package model

import "time"

// Alert represents a persisted alert snapshot.
type Alert struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"filepath"`
	FileSize  int64     `json:"filesize"`
}

// AlertStats contains statistics about stored alerts.
type AlertStats struct {
	TotalAlerts    int            `json:"total_alerts"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	PerSource      map[string]int `json:"per_source"`
	ClassCounts    map[string]int `json:"class_counts"`
}
