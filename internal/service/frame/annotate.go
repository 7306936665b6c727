package frame

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

const (
	timestampFontScale = 0.6
	labelFontScale     = 0.7
	strokeThickness    = 2
	labelBandHeight    = 25
)

var (
	alertColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// Label formats the caption drawn above a detection box.
func Label(class string, confidence int) string {
	return fmt.Sprintf("%s %d%%", class, confidence)
}

// DrawTimestamp burns timestamp into the bottom-left corner of frame.
func DrawTimestamp(frame *gocv.Mat, timestamp string) error {
	origin := image.Pt(10, frame.Rows()-10)
	if err := gocv.PutText(frame, timestamp, origin, gocv.FontHersheySimplex, timestampFontScale, textColor, strokeThickness); err != nil {
		return fmt.Errorf("draw timestamp: %w", err)
	}
	return nil
}

// DrawDetection outlines box and writes label on a filled band above its top-left corner.
func DrawDetection(frame *gocv.Mat, box image.Rectangle, label string) error {
	if err := gocv.Rectangle(frame, box, alertColor, strokeThickness); err != nil {
		return fmt.Errorf("draw box: %w", err)
	}

	textSize := gocv.GetTextSize(label, gocv.FontHersheySimplex, labelFontScale, strokeThickness)
	band := image.Rect(box.Min.X, box.Min.Y-labelBandHeight, box.Min.X+textSize.X, box.Min.Y)
	if err := gocv.Rectangle(frame, band, alertColor, -1); err != nil {
		return fmt.Errorf("draw label band: %w", err)
	}

	if err := gocv.PutText(frame, label, image.Pt(box.Min.X, box.Min.Y-5), gocv.FontHersheySimplex, labelFontScale, textColor, strokeThickness); err != nil {
		return fmt.Errorf("draw label: %w", err)
	}
	return nil
}
