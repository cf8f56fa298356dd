//go:build !gocv

package detection

import "errors"

// OpenCVAvailable reports whether the binary was built with the gocv tag.
const OpenCVAvailable = false

// ErrOpenCVUnavailable is returned by NewOpenCV in builds without gocv.
var ErrOpenCVUnavailable = errors.New("opencv backend not compiled in (build with -tags gocv)")

// NewOpenCV returns ErrOpenCVUnavailable in builds without the gocv tag.
func NewOpenCV(maxSide int) (Vision, error) {
	return nil, ErrOpenCVUnavailable
}
