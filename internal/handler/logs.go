package handler

import (
	"net/http"
	"os"

	"gundetect/internal/logger"

	"github.com/gorilla/mux"
)

// ShowLogsHandler serves the log file named by the {level} route variable as text/plain.
func ShowLogsHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := logger.ParseLevel(mux.Vars(r)["level"])
		if !ok {
			http.NotFound(w, r)
			return
		}

		filePath := log.Path(level)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + level.File()))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filePath)
	}
}

// ClearLogsHandler truncates the log file named by the {level} route variable.
func ClearLogsHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := logger.ParseLevel(mux.Vars(r)["level"])
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := log.CleanLogs(level); err != nil {
			http.Error(w, "Unable to clear log file", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
