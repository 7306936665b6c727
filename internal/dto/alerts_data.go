// AlertsData is a paginated response payload for the alert gallery.
package dto

type AlertsData struct {
	Alerts      []AlertInfo `json:"alerts"`
	AlertsDir   string      `json:"alertsDir"`
	Length      int         `json:"length"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Limit       int         `json:"pageSize"`
}
