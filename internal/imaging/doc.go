// Package imaging provides the pixel-level building blocks of the ramen
// pipeline: input normalisation, EXIF orientation, contrast enhancement,
// edge detection and bowl cropping.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward and Y increases downward.
//
// # Input
//
// A photo can arrive as a file path, as raw bytes or as an already decoded
// image. Source wraps the three shapes and Normalize turns any of them into a
// Photo: a decoded image with the EXIF orientation already applied, plus the
// original bytes so metadata readers (GPS, orientation) and the labeling step
// see the file exactly as it was uploaded.
//
// # Orientation
//
// Phones store landscape shots in sensor order and record the physical
// rotation in the EXIF Orientation tag (1..8). ApplyOrientation performs the
// matching flip/rotate so pixel (0,0) is the visual top-left. It must run
// before any geometry is computed.
//
// # Edge Detection
//
// Sobel, Canny and CLAHE operate on *image.Gray. They are used by the pure-Go
// bowl detector and are independent of any OpenCV build.
//
// # Cropping
//
// CropSquare turns a ratio-based bowl region into a square crop clamped to
// the image bounds. CropCenterCircle is the low-dependency alternative that
// ignores detection and masks a centered circle.
//
// # Thread Safety
//
// Functions are stateless and can be called concurrently on different
// images. Returned images are freshly allocated.
package imaging
