package ai

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gundetect/internal/config"
	"gundetect/internal/logger"

	"gocv.io/x/gocv"
)

// Detection is one raw box reported by the network, in frame pixel coordinates.
type Detection struct {
	ClassID int
	Score   float32
	Box     image.Rectangle
}

// DetectorService runs a YOLO model exported to ONNX through the OpenCV DNN module.
type DetectorService struct {
	net           gocv.Net
	ready         bool
	mu            sync.Mutex
	modelPath     string
	inputSize     image.Point
	confThreshold float32
	nmsThreshold  float32
	logger        *logger.Logger
}

// NewDetectorService creates a detector and attempts to load the network.
// A failed load is logged; Detect then reports the detector as not ready.
func NewDetectorService(config *config.Config, logger *logger.Logger) *DetectorService {
	service := &DetectorService{
		modelPath:     config.ModelPath,
		inputSize:     image.Pt(config.ModelInputSize, config.ModelInputSize),
		confThreshold: float32(config.ModelConfidence),
		nmsThreshold:  float32(config.NMSThreshold),
		logger:        logger,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize detection network: %v", err)
		return service
	}

	return service
}

// initializeNet loads the ONNX network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	net := gocv.ReadNetFromONNX(s.modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.ready = true
	s.logger.Info("Detection network initialized from %s", s.modelPath)
	return nil
}

// Ready reports whether the network was loaded.
func (s *DetectorService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Detect runs the network once on frame and returns boxes after NMS, highest score first.
// The network is not safe for concurrent use, so calls are serialized.
func (s *DetectorService) Detect(frame gocv.Mat) ([]Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, fmt.Errorf("detection network not initialized")
	}

	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, s.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	// YOLO output: [1, 4+classes, anchors], boxes as (cx, cy, w, h) in input pixels.
	sizes := output.Size()
	if len(sizes) != 3 || sizes[1] < 5 {
		return nil, fmt.Errorf("unexpected output shape %v", sizes)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read network output: %w", err)
	}

	scaleX := float32(frame.Cols()) / float32(s.inputSize.X)
	scaleY := float32(frame.Rows()) / float32(s.inputSize.Y)
	candidates := decodeOutput(data, sizes[1], sizes[2], scaleX, scaleY, s.confThreshold)
	if len(candidates) == 0 {
		return []Detection{}, nil
	}

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	boxes := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		c.Box = c.Box.Intersect(bounds)
		candidates[i] = c
		boxes[i] = c.Box
		scores[i] = c.Score
	}

	indices := gocv.NMSBoxes(boxes, scores, s.confThreshold, s.nmsThreshold)

	detections := make([]Detection, 0, len(indices))
	for _, idx := range indices {
		detections = append(detections, candidates[idx])
	}

	return detections, nil
}

// decodeOutput turns a channel-major YOLO tensor into candidate boxes whose
// best class score reaches confThreshold.
func decodeOutput(data []float32, channels, anchors int, scaleX, scaleY, confThreshold float32) []Detection {
	if channels < 5 || anchors <= 0 || len(data) < channels*anchors {
		return nil
	}

	var candidates []Detection
	for i := 0; i < anchors; i++ {
		bestScore := float32(0)
		bestClass := 0
		for c := 4; c < channels; c++ {
			score := data[c*anchors+i]
			if score > bestScore {
				bestScore = score
				bestClass = c - 4
			}
		}

		if bestScore < confThreshold {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		x1 := int((cx - w/2) * scaleX)
		y1 := int((cy - h/2) * scaleY)
		x2 := int((cx + w/2) * scaleX)
		y2 := int((cy + h/2) * scaleY)

		candidates = append(candidates, Detection{
			ClassID: bestClass,
			Score:   bestScore,
			Box:     image.Rect(x1, y1, x2, y2),
		})
	}

	return candidates
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		s.ready = false
		return s.net.Close()
	}
	return nil
}
