package handler

import (
	"net/http"
	"os"

	"gundetect/internal/dto"
	"gundetect/internal/logger"
	"gundetect/internal/repository"
	"gundetect/internal/service/storage"
)

const defaultPageSize = 24

// GetAlertsHandler returns a filtered, paginated list of indexed alerts.
func GetAlertsHandler(store *storage.AlertStore, logger *logger.Logger,
	alertRepo repository.AlertRepository, detectionRepo repository.DetectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if alertRepo == nil {
			respondError(w, "alert index is disabled", http.StatusServiceUnavailable)
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), defaultPageSize)

		filter := &dto.AlertFilters{
			Source:     q.Get("source"),
			Class:      q.Get("class"),
			DateAfter:  parseDate(q.Get("dateAfter")),
			DateBefore: parseDate(q.Get("dateBefore")),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}

		alerts, err := alertRepo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying alerts from database: %v", err)
			respondError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := alertRepo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting alerts: %v", err)
			totalCount = len(alerts)
		}

		infos := make([]dto.AlertInfo, 0, len(alerts))
		for _, alert := range alerts {
			classes := []string{}
			if detectionRepo != nil {
				if names, err := detectionRepo.GetClassNamesByAlertID(alert.ID); err != nil {
					logger.Error("Error getting classes for alert %d: %v", alert.ID, err)
				} else if names != nil {
					classes = names
				}
			}

			infos = append(infos, dto.AlertInfo{
				Name:      alert.Filename,
				Source:    alert.Source,
				Date:      alert.Timestamp,
				TimeOfDay: alert.Timestamp,
				Classes:   classes,
				Size:      alert.FileSize,
			})
		}

		respondJSON(w, dto.AlertsData{
			Alerts:      infos,
			AlertsDir:   store.Folder(""),
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}, http.StatusOK)
	}
}

// AlertDetectionsHandler returns the recorded detections of one alert.
func AlertDetectionsHandler(logger *logger.Logger, alertRepo repository.AlertRepository,
	detectionRepo repository.DetectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if alertRepo == nil || detectionRepo == nil {
			respondError(w, "alert index is disabled", http.StatusServiceUnavailable)
			return
		}

		filename := r.URL.Query().Get("filename")
		if filename == "" {
			respondError(w, "Filename required", http.StatusBadRequest)
			return
		}

		alert, err := alertRepo.GetByFilename(filename)
		if err != nil {
			logger.Error("Error loading alert %s: %v", filename, err)
			respondError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if alert == nil {
			respondError(w, "Alert not found", http.StatusNotFound)
			return
		}

		detections, err := detectionRepo.GetByAlertID(alert.ID)
		if err != nil {
			logger.Error("Error loading detections for %s: %v", filename, err)
			respondError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		results := make([]dto.DetectionResult, 0, len(detections))
		for _, d := range detections {
			results = append(results, dto.DetectionResult{
				Class:      d.ClassName,
				Confidence: d.Confidence,
				BBox:       [4]int{d.X1, d.Y1, d.X2, d.Y2},
			})
		}
		respondJSON(w, results, http.StatusOK)
	}
}

// AlertFiltersHandler lists the source tags and class names available for filtering.
func AlertFiltersHandler(logger *logger.Logger, alertRepo repository.AlertRepository,
	detectionRepo repository.DetectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if alertRepo == nil || detectionRepo == nil {
			respondError(w, "alert index is disabled", http.StatusServiceUnavailable)
			return
		}

		sources, err := alertRepo.GetSources()
		if err != nil {
			logger.Error("Error loading sources: %v", err)
			sources = nil
		}
		classes, err := detectionRepo.GetAllClassNames()
		if err != nil {
			logger.Error("Error loading classes: %v", err)
			classes = nil
		}

		if sources == nil {
			sources = []string{}
		}
		if classes == nil {
			classes = []string{}
		}
		respondJSON(w, map[string][]string{"sources": sources, "classes": classes}, http.StatusOK)
	}
}

// AlertStatsHandler returns totals per source and the most frequent classes.
func AlertStatsHandler(logger *logger.Logger, alertRepo repository.AlertRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if alertRepo == nil {
			respondError(w, "alert index is disabled", http.StatusServiceUnavailable)
			return
		}

		stats, err := alertRepo.GetStats()
		if err != nil {
			logger.Error("Error computing alert stats: %v", err)
			respondError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, stats, http.StatusOK)
	}
}

// ViewAlertHandler serves a single alert image given by the "filename" query parameter.
func ViewAlertHandler(store *storage.AlertStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.URL.Query().Get("filename")
		if filename == "" {
			http.Error(w, "Filename parameter is required", http.StatusBadRequest)
			return
		}

		path, err := store.Resolve(filename)
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, path)
	}
}

// DeleteAlertHandler removes an alert from disk and from the index.
func DeleteAlertHandler(store *storage.AlertStore, logger *logger.Logger, alertRepo repository.AlertRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.URL.Query().Get("filename")
		if filename == "" {
			respondError(w, "Filename required", http.StatusBadRequest)
			return
		}

		if err := store.Remove(filename); err != nil {
			logger.Error("Failed to delete alert %s: %v", filename, err)
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if alertRepo != nil {
			if err := alertRepo.DeleteByFilename(filename); err != nil {
				logger.Error("Failed to delete alert %s from database: %v", filename, err)
			}
		}

		logger.Info("Deleted alert: %s", filename)
		respondJSON(w, map[string]string{"status": "deleted", "filename": filename}, http.StatusOK)
	}
}

// ClearAlertsHandler deletes every alert file and clears the index.
func ClearAlertsHandler(store *storage.AlertStore, logger *logger.Logger, alertRepo repository.AlertRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := store.Clear()
		if err != nil {
			logger.Error("Error clearing alerts: %v", err)
			respondError(w, "Unable to clear alert folders", http.StatusInternalServerError)
			return
		}

		if alertRepo != nil {
			if err := alertRepo.DeleteAll(); err != nil {
				logger.Error("Error clearing database: %v", err)
			}
		}

		logger.Info("Cleared %d alert(s)", removed)
		w.WriteHeader(http.StatusNoContent)
	}
}
