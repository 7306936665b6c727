package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gundetect/internal/dto"
	"gundetect/internal/logger"
)

// RecoverMiddleware turns a panic in any handler into the standard JSON
// failure body with status 500 and logs it with a stack trace.
func RecoverMiddleware(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorStack("Panic serving %s %s: %v", r.Method, r.URL.Path, rec)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(dto.ErrorResponse{
					Success: false,
					Error:   fmt.Sprintf("%v", rec),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
