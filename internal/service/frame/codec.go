package frame

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// JPEGDataURLPrefix is prepended to every encoded frame.
const JPEGDataURLPrefix = "data:image/jpeg;base64,"

var (
	ErrMalformedDataURL = errors.New("image is not a data URL")
	ErrInvalidImage     = errors.New("payload is not a valid image")
)

// DecodeDataURL strips the "data:<mime>;base64," header, base64-decodes the
// remainder and decodes it into a BGR frame. The caller owns the returned Mat.
func DecodeDataURL(dataURL string) (gocv.Mat, error) {
	_, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return gocv.NewMat(), ErrMalformedDataURL
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode base64: %w", err)
	}
	if len(raw) == 0 {
		return gocv.NewMat(), ErrInvalidImage
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), ErrInvalidImage
	}

	return mat, nil
}

// EncodeDataURL encodes frame as JPEG and returns it as a base64 data URL.
func EncodeDataURL(frame gocv.Mat) (string, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	return JPEGDataURLPrefix + base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}
