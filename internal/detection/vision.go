package detection

import "fmt"

// Backend names accepted by NewVision.
const (
	BackendAuto   = "auto"
	BackendOpenCV = "opencv"
	BackendNative = "native"
	BackendNone   = "none"
)

// NewVision selects a vision backend by name. "auto" prefers OpenCV when it
// was compiled in and falls back to the native backend. "none" returns a nil
// Vision, which makes the Locator use the heuristic region only.
func NewVision(backend string, maxSide int) (Vision, error) {
	switch backend {
	case BackendAuto, "":
		if OpenCVAvailable {
			return NewOpenCV(maxSide)
		}
		return NewNative(maxSide), nil
	case BackendOpenCV:
		return NewOpenCV(maxSide)
	case BackendNative:
		return NewNative(maxSide), nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown vision backend: %s", backend)
	}
}
