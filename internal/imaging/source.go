package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// ErrEmptySource is returned by Normalize for a zero Source.
var ErrEmptySource = errors.New("empty image source")

// Source is one of the three accepted input shapes: a file path, raw
// encoded bytes, or a decoded image. Use FromPath, FromBytes or FromImage.
type Source struct {
	path  string
	data  []byte
	image image.Image
}

// FromPath returns a Source that reads the file at path.
func FromPath(path string) Source { return Source{path: path} }

// FromBytes returns a Source over encoded image bytes (JPEG, PNG, GIF, ...).
func FromBytes(data []byte) Source { return Source{data: data} }

// FromImage returns a Source over an already decoded image. Such a source
// carries no metadata, so GPS and orientation are unavailable.
func FromImage(img image.Image) Source { return Source{image: img} }

// Photo is the canonical decoded form every pipeline stage consumes.
type Photo struct {
	// Image is the decoded image with EXIF orientation applied.
	Image image.Image

	// Original holds the encoded bytes exactly as received. Nil when the
	// source was a decoded image.
	Original []byte

	// Path is the file path when the source was a path.
	Path string

	// Orientation is the EXIF orientation tag found (1 when absent).
	Orientation int
}

// Bounds is a shorthand for p.Image.Bounds().
func (p *Photo) Bounds() image.Rectangle { return p.Image.Bounds() }

// Normalize decodes src and applies EXIF orientation.
//
// Decode failures are returned as errors. They are the only fatal input
// failure in the pipeline: without pixels no geometry can be computed.
func Normalize(src Source) (*Photo, error) {
	switch {
	case src.image != nil:
		return &Photo{Image: src.image, Orientation: 1}, nil

	case src.path != "":
		data, err := os.ReadFile(src.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		p, err := decodePhoto(data)
		if err != nil {
			return nil, err
		}
		p.Path = src.path
		return p, nil

	case len(src.data) > 0:
		return decodePhoto(src.data)
	}
	return nil, ErrEmptySource
}

func decodePhoto(data []byte) (*Photo, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	orientation := ReadOrientation(data)
	return &Photo{
		Image:       ApplyOrientation(img, orientation),
		Original:    data,
		Orientation: orientation,
	}, nil
}

// ReadOrientation returns the EXIF Orientation tag of an encoded image, or 1
// when the image has no EXIF block or the tag is missing or out of range.
func ReadOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// ApplyOrientation performs the flip/rotate described by an EXIF orientation
// tag so the result is stored in visual order. Tag 1 and unknown tags return
// img unchanged.
func ApplyOrientation(img image.Image, tag int) image.Image {
	switch tag {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// Downscale shrinks img so neither side exceeds maxSide, keeping the aspect
// ratio. Smaller images and maxSide <= 0 return img unchanged.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Box)
}
