package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gundetect/internal/dto"
	"gundetect/internal/logger"

	"github.com/google/uuid"
)

// FrameProcessor runs the detection pipeline for one request.
type FrameProcessor interface {
	ProcessFrame(requestID string, req dto.StreamRequest) (*dto.StreamResponse, error)
}

// StreamHandler accepts a data-URL frame and answers with detections and the
// annotated frame. Every failure is reported as 500 with {success:false, error}.
func StreamHandler(processor FrameProcessor, maxBodyBytes int64, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		if maxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		var req dto.StreamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.ErrorStack("[%s] Invalid stream request body: %v", requestID, err)
			respondError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusInternalServerError)
			return
		}

		resp, err := processor.ProcessFrame(requestID, req)
		if err != nil {
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		logger.Info("[%s] Processed %s frame: %d detection(s) in %dms",
			requestID, req.Source, len(resp.Detections), resp.ProcessingTimeMs)
		respondJSON(w, resp, http.StatusOK)
	}
}
