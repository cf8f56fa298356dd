package location

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
)

// GPS IFD tag numbers.
const (
	tagGPSInfo         = 0x8825
	tagGPSLatitudeRef  = 0x0001
	tagGPSLatitude     = 0x0002
	tagGPSLongitudeRef = 0x0003
	tagGPSLongitude    = 0x0004
)

// decodeExif parses the EXIF block of an encoded image. goexif may return
// a partially decoded value together with an error; that value is kept so
// the legacy lookup can still walk IFD0.
func decodeExif(data []byte) (*exif.Exif, error) {
	if len(data) == 0 {
		return nil, nil
	}
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return nil, err
	}
	return x, nil
}

// structuredGPS reads the GPS fields goexif resolved from the sub-IFD.
func structuredGPS(x *exif.Exif) (geo.Coordinate, bool, error) {
	lat, err := x.Get(exif.GPSLatitude)
	if err != nil {
		return geo.Coordinate{}, false, nil
	}
	lon, err := x.Get(exif.GPSLongitude)
	if err != nil {
		return geo.Coordinate{}, false, nil
	}

	var latRef, lonRef string
	if tag, err := x.Get(exif.GPSLatitudeRef); err == nil {
		latRef, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.GPSLongitudeRef); err == nil {
		lonRef, _ = tag.StringVal()
	}

	return toCoordinate(lat, latRef, lon, lonRef)
}

// legacyGPS finds the GPS pointer among the raw IFD0 tags and decodes the
// directory it points at.
func legacyGPS(x *exif.Exif) (geo.Coordinate, bool, error) {
	if x.Tiff == nil || len(x.Tiff.Dirs) == 0 {
		return geo.Coordinate{}, false, nil
	}

	var pointer *tiff.Tag
	for _, tag := range x.Tiff.Dirs[0].Tags {
		if tag.Id == tagGPSInfo {
			pointer = tag
			break
		}
	}
	if pointer == nil {
		return geo.Coordinate{}, false, nil
	}

	offset, err := pointer.Int64(0)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("failed to read GPS pointer: %w", err)
	}

	r := bytes.NewReader(x.Raw)
	if _, err := r.Seek(offset, 0); err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("failed to seek GPS directory: %w", err)
	}
	dir, _, err := tiff.DecodeDir(r, x.Tiff.Order)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("failed to decode GPS directory: %w", err)
	}

	fields := make(map[uint16]*tiff.Tag, len(dir.Tags))
	for _, tag := range dir.Tags {
		fields[tag.Id] = tag
	}

	lat, lon := fields[tagGPSLatitude], fields[tagGPSLongitude]
	if lat == nil || lon == nil {
		return geo.Coordinate{}, false, nil
	}
	return toCoordinate(lat, refOf(fields[tagGPSLatitudeRef]), lon, refOf(fields[tagGPSLongitudeRef]))
}

func refOf(tag *tiff.Tag) string {
	if tag == nil {
		return ""
	}
	s, _ := tag.StringVal()
	return s
}

func toCoordinate(lat *tiff.Tag, latRef string, lon *tiff.Tag, lonRef string) (geo.Coordinate, bool, error) {
	la, err := tagToDecimal(lat, latRef)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("latitude: %w", err)
	}
	lo, err := tagToDecimal(lon, lonRef)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("longitude: %w", err)
	}

	c := geo.Coordinate{Lat: la, Lon: lo}
	if !plausible(c) {
		return geo.Coordinate{}, false, nil
	}
	return c, true, nil
}

// tagToDecimal converts a three-rational DMS tag. A zero denominator is
// read as the bare numerator, which some writers emit for whole values.
func tagToDecimal(tag *tiff.Tag, ref string) (float64, error) {
	if tag.Count < 3 {
		return 0, fmt.Errorf("expected 3 values, got %d", tag.Count)
	}

	var v [3]float64
	for i := range v {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			v[i] = float64(num)
		} else {
			v[i] = float64(num) / float64(den)
		}
	}

	ref = strings.TrimRight(ref, "\x00 ")
	return DMSToDecimal(v[0], v[1], v[2], ref), nil
}

// plausible rejects out-of-range values and the all-zero coordinate that
// some cameras write when they have no fix.
func plausible(c geo.Coordinate) bool {
	if c.Lat == 0 && c.Lon == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
