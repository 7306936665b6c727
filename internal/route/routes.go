package route

import (
	"net/http"

	"gundetect/internal/handler"
	"gundetect/internal/logger"
	"gundetect/internal/middleware"
	"gundetect/internal/repository"
	"gundetect/internal/service/storage"

	"github.com/gorilla/mux"
)

// Dependencies holds everything the HTTP layer needs. AlertRepo and
// DetectionRepo are nil when the alert index is disabled.
type Dependencies struct {
	Processor     handler.FrameProcessor
	Detector      handler.ReadinessChecker
	Hub           handler.ViewerRegistry
	AlertStore    *storage.AlertStore
	AlertRepo     repository.AlertRepository
	DetectionRepo repository.DetectionRepository
	Logger        *logger.Logger
	MaxBodyBytes  int64
}

// SetupRoutes registers the stream endpoint, the alert gallery API, the live
// feed and log endpoints, and wraps the router with CORS and panic recovery.
// CORS sits outside the router so preflight requests for any path are answered.
func SetupRoutes(deps Dependencies) http.Handler {
	router := mux.NewRouter()
	log := deps.Logger

	router.HandleFunc("/stream", handler.StreamHandler(deps.Processor, deps.MaxBodyBytes, log)).Methods(http.MethodPost)
	router.HandleFunc("/health", handler.HealthHandler(deps.Detector)).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/view", handler.ViewWebsocketHandler(deps.Hub, log)).Methods(http.MethodGet)
	api.HandleFunc("/alerts", handler.GetAlertsHandler(deps.AlertStore, log, deps.AlertRepo, deps.DetectionRepo)).Methods(http.MethodGet)
	api.HandleFunc("/alerts/view", handler.ViewAlertHandler(deps.AlertStore)).Methods(http.MethodGet)
	api.HandleFunc("/alerts/detections", handler.AlertDetectionsHandler(log, deps.AlertRepo, deps.DetectionRepo)).Methods(http.MethodGet)
	api.HandleFunc("/alerts/filters", handler.AlertFiltersHandler(log, deps.AlertRepo, deps.DetectionRepo)).Methods(http.MethodGet)
	api.HandleFunc("/alerts/stats", handler.AlertStatsHandler(log, deps.AlertRepo)).Methods(http.MethodGet)
	api.HandleFunc("/alerts/delete", handler.DeleteAlertHandler(deps.AlertStore, log, deps.AlertRepo)).Methods(http.MethodDelete)
	api.HandleFunc("/alerts/clear", handler.ClearAlertsHandler(deps.AlertStore, log, deps.AlertRepo)).Methods(http.MethodPost)

	logs := router.PathPrefix("/logs").Subrouter()
	logs.HandleFunc("/{level:info|warning|error}", handler.ShowLogsHandler(log)).Methods(http.MethodGet)
	logs.HandleFunc("/{level:info|warning|error}/clear", handler.ClearLogsHandler(log)).Methods(http.MethodPost)

	return middleware.CORSMiddleware(middleware.RecoverMiddleware(log)(router))
}
