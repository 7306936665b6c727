package service

import (
	"errors"
	"image"
	"time"

	"gundetect/internal/dto"
	"gundetect/internal/logger"
	"gundetect/internal/model"
	"gundetect/internal/repository"
	"gundetect/internal/service/ai"
	"gundetect/internal/service/frame"
	"gundetect/internal/service/storage"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

const (
	// SignificantConfidence is the percentage a detection must exceed to be
	// drawn and to trigger an alert.
	SignificantConfidence = 70
	// TimestampLayout is used for the burned-in timestamp and the response field.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Detector runs object detection on a BGR frame.
type Detector interface {
	Detect(frame gocv.Mat) ([]ai.Detection, error)
}

// AlertNotifier receives every persisted alert.
type AlertNotifier interface {
	PublishAlert(event dto.AlertEvent)
}

// FrameProcessor runs the decode, detect, annotate, persist and encode pass
// for a single frame. It is safe for concurrent use as long as the Detector is.
type FrameProcessor struct {
	detector      Detector
	labels        ai.Labels
	alertStore    *storage.AlertStore
	alertRepo     repository.AlertRepository
	detectionRepo repository.DetectionRepository
	notifier      AlertNotifier
	logger        *logger.Logger
	now           func() time.Time
}

// NewFrameProcessor wires the pipeline. alertRepo, detectionRepo and notifier
// may be nil, in which case alerts are only written to disk.
func NewFrameProcessor(detector Detector, labels ai.Labels, alertStore *storage.AlertStore,
	alertRepo repository.AlertRepository, detectionRepo repository.DetectionRepository,
	notifier AlertNotifier, logger *logger.Logger) *FrameProcessor {
	if len(labels) == 0 {
		labels = ai.DefaultLabels
	}

	return &FrameProcessor{
		detector:      detector,
		labels:        labels,
		alertStore:    alertStore,
		alertRepo:     alertRepo,
		detectionRepo: detectionRepo,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// ProcessFrame handles one stream request. On failure the returned error is a
// *ProcessingError and has already been logged with a stack trace.
func (p *FrameProcessor) ProcessFrame(requestID string, req dto.StreamRequest) (*dto.StreamResponse, error) {
	start := time.Now()
	at := p.now()
	timestamp := at.Format(TimestampLayout)
	source := req.Source

	if req.Image == "" {
		return nil, p.fail(requestID, KindPayload, "missing image field", nil)
	}

	mat, err := frame.DecodeDataURL(req.Image)
	if err != nil {
		kind := KindDecode
		if errors.Is(err, frame.ErrMalformedDataURL) {
			kind = KindPayload
		}
		mat.Close()
		return nil, p.fail(requestID, kind, "failed to decode image", err)
	}
	defer mat.Close()

	if err := frame.Downscale(&mat, frame.MaxDimension); err != nil {
		return nil, p.fail(requestID, KindDecode, "failed to resize image", err)
	}

	raw, err := p.detector.Detect(mat)
	if err != nil {
		return nil, p.fail(requestID, KindDetect, "detection failed", err)
	}

	// The detector sees the clean frame; overlays go on a copy.
	annotated := mat.Clone()
	defer annotated.Close()

	if err := frame.DrawTimestamp(&annotated, timestamp); err != nil {
		return nil, p.fail(requestID, KindAnnotate, "failed to draw timestamp", err)
	}

	detections := make([]dto.DetectionResult, 0, len(raw))
	significant := false
	for _, d := range raw {
		class := p.labels.Name(d.ClassID)
		confidence := int(d.Score * 100)
		detections = append(detections, dto.DetectionResult{
			Class:      class,
			Confidence: confidence,
			BBox:       bbox(d.Box),
		})

		if confidence <= SignificantConfidence {
			continue
		}
		if err := frame.DrawDetection(&annotated, d.Box, frame.Label(class, confidence)); err != nil {
			return nil, p.fail(requestID, KindAnnotate, "failed to draw detection", err)
		}
		significant = true
	}

	if significant {
		alert, err := p.alertStore.Save(annotated, source, at)
		if err != nil {
			return nil, p.fail(requestID, KindPersist, "failed to save alert", err)
		}
		p.logger.Info("[%s] Alert saved for source %s: %s", requestID, source, alert.Filename)
		p.recordAlert(requestID, alert, detections, timestamp)
	}

	processed, err := frame.EncodeDataURL(annotated)
	if err != nil {
		return nil, p.fail(requestID, KindEncode, "failed to encode processed image", err)
	}

	return &dto.StreamResponse{
		Success:          true,
		Detections:       detections,
		ProcessedImage:   processed,
		Timestamp:        timestamp,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// recordAlert indexes a saved alert and notifies live viewers. Failures here
// are logged only; the file on disk is already written.
func (p *FrameProcessor) recordAlert(requestID string, alert *model.Alert, detections []dto.DetectionResult, timestamp string) {
	if p.alertRepo != nil {
		id, err := p.alertRepo.Insert(alert)
		if err != nil {
			p.logger.Error("[%s] Failed to index alert %s: %v", requestID, alert.Filename, err)
		} else {
			alert.ID = id
			if p.detectionRepo != nil {
				if err := p.detectionRepo.InsertBatch(detectionRecords(id, detections)); err != nil {
					p.logger.Error("[%s] Failed to index detections for %s: %v", requestID, alert.Filename, err)
				}
			}
		}
	}

	if p.notifier != nil {
		p.notifier.PublishAlert(dto.AlertEvent{
			ID:         uuid.NewString(),
			Filename:   alert.Filename,
			Source:     alert.Source,
			Timestamp:  timestamp,
			Detections: detections,
		})
	}
}

func (p *FrameProcessor) fail(requestID string, kind ErrorKind, message string, cause error) *ProcessingError {
	err := &ProcessingError{Kind: kind, Message: message, Cause: cause}
	p.logger.ErrorStack("[%s] Frame processing failed (%s): %v", requestID, kind, err)
	return err
}

func bbox(r image.Rectangle) [4]int {
	return [4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

func detectionRecords(alertID int64, detections []dto.DetectionResult) []model.Detection {
	records := make([]model.Detection, 0, len(detections))
	for _, d := range detections {
		records = append(records, model.Detection{
			AlertID:    alertID,
			ClassName:  d.Class,
			Confidence: d.Confidence,
			X1:         d.BBox[0],
			Y1:         d.BBox[1],
			X2:         d.BBox[2],
			Y2:         d.BBox[3],
		})
	}
	return records
}
