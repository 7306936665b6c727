// AlertFilters describe user-provided filters to narrow the alert list.
package dto

import "time"

type AlertFilters struct {
	Source     string
	Class      string
	DateAfter  time.Time
	DateBefore time.Time
	Limit      int
	Offset     int
}
