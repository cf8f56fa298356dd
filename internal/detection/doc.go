// Package detection locates the ramen bowl in a photo.
//
// The result is a BowlRegion: a circle described by ratios of the image
// size, so it can be computed on a downscaled copy and applied to the full
// resolution original.
//
// # Strategy Cascade
//
// Locator.Locate tries three strategies in strict order and returns the first
// success:
//
//  1. Hough circles: grayscale, CLAHE (clip 3.0, 8×8 tiles), Gaussian blur
//     (9×9, σ=2), then a gradient Hough transform over six presets from
//     strict to permissive. The first preset that yields a circle wins and
//     its largest circle is used.
//  2. Contours: Canny (30/100), morphological close, external contours. The
//     contour with the best circularity × area score is fitted with its
//     minimum enclosing circle.
//  3. Heuristic: a fixed region slightly above centre. Ramen photos are
//     usually framed with the rim visible above the middle.
//
// Detected regions always satisfy 0.15 < RadiusRatio < 0.50; the heuristic
// region is fixed at 0.42.
//
// # Vision Backends
//
// The pixel work sits behind the Vision interface. The native backend is pure
// Go and always available. Building with the gocv tag adds an OpenCV backend
// through gocv.io/x/gocv. A nil Vision makes the locator return the heuristic
// region directly.
//
// # Limitations
//
// This is a best-effort heuristic, not an object detector. Plates, lids and
// round tables can win over the bowl.
package detection
