package handler

import "net/http"

// ReadinessChecker reports whether the detection model is loaded.
type ReadinessChecker interface {
	Ready() bool
}

// HealthHandler reports service status and detector readiness.
func HealthHandler(detector ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := detector != nil && detector.Ready()
		status := "ok"
		if !ready {
			status = "degraded"
		}
		respondJSON(w, map[string]interface{}{"status": status, "detector_ready": ready}, http.StatusOK)
	}
}
