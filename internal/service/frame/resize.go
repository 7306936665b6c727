package frame

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MaxDimension bounds the longer side of a frame before detection.
const MaxDimension = 1280

// FitWithin returns the size of a width x height frame scaled so that its
// longer side equals limit, and whether scaling is needed at all.
func FitWithin(width, height, limit int) (int, int, bool) {
	if width <= limit && height <= limit {
		return width, height, false
	}

	scale := float64(limit) / float64(max(width, height))
	return int(float64(width) * scale), int(float64(height) * scale), true
}

// Downscale shrinks frame in place when either side exceeds limit, preserving
// the aspect ratio.
func Downscale(frame *gocv.Mat, limit int) error {
	width, height, needed := FitWithin(frame.Cols(), frame.Rows(), limit)
	if !needed {
		return nil
	}

	resized := gocv.NewMat()
	if err := gocv.Resize(*frame, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear); err != nil {
		resized.Close()
		return fmt.Errorf("resize frame: %w", err)
	}

	frame.Close()
	*frame = resized
	return nil
}
