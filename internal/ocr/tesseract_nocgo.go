//go:build !cgo

package ocr

import "fmt"

// NewTesseract reports ErrEngineUnavailable in builds without cgo.
func NewTesseract(tessdataPrefix string) (Engine, error) {
	return nil, fmt.Errorf("tesseract needs cgo: %w", ErrEngineUnavailable)
}
