// Package exiftest builds small EXIF blocks and JPEGs carrying them, for
// tests of orientation and GPS handling.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
)

// TIFF field types.
const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

// Rational is an EXIF RATIONAL as numerator and denominator.
type Rational [2]uint32

// GPS describes a GPS IFD. Refs are single letters (N, S, E, W).
type GPS struct {
	LatRef string
	Lat    [3]Rational
	LonRef string
	Lon    [3]Rational
}

// DMS is a shorthand for whole degrees and minutes and seconds in
// hundredths.
func DMS(deg, min, secHundredths uint32) [3]Rational {
	return [3]Rational{{deg, 1}, {min, 1}, {secHundredths, 100}}
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

var le = binary.LittleEndian

// TIFF returns a little-endian TIFF block. orientation 0 omits the tag and
// a nil gps omits the GPS IFD.
func TIFF(orientation int, gps *GPS) []byte {
	var ifd0 []entry
	if orientation > 0 {
		ifd0 = append(ifd0, entry{0x0112, typeShort, 1, le.AppendUint16(nil, uint16(orientation))})
	}
	if gps != nil {
		ifd0 = append(ifd0, entry{0x8825, typeLong, 1, nil})
	}

	const headerLen = 8
	gpsOffset := uint32(headerLen + 2 + 12*len(ifd0) + 4)
	if gps != nil {
		ifd0[len(ifd0)-1].value = le.AppendUint32(nil, gpsOffset)
	}

	out := []byte{'I', 'I'}
	out = le.AppendUint16(out, 42)
	out = le.AppendUint32(out, headerLen)
	out = append(out, writeIFD(headerLen, ifd0)...)

	if gps != nil {
		out = append(out, writeIFD(gpsOffset, []entry{
			{1, typeASCII, uint32(len(gps.LatRef) + 1), append([]byte(gps.LatRef), 0)},
			{2, typeRational, 3, rationals(gps.Lat)},
			{3, typeASCII, uint32(len(gps.LonRef) + 1), append([]byte(gps.LonRef), 0)},
			{4, typeRational, 3, rationals(gps.Lon)},
		})...)
	}
	return out
}

// JPEG encodes img and inserts tiff as an APP1 Exif segment right after
// the start-of-image marker. A nil tiff gives a plain JPEG.
func JPEG(img image.Image, tiff []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	if tiff == nil {
		return buf.Bytes(), nil
	}

	raw := buf.Bytes()
	payload := append([]byte("Exif\x00\x00"), tiff...)

	out := make([]byte, 0, len(raw)+len(payload)+4)
	out = append(out, raw[:2]...)
	out = append(out, 0xFF, 0xE1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	out = append(out, raw[2:]...)
	return out, nil
}

func rationals(rs [3]Rational) []byte {
	var b []byte
	for _, r := range rs {
		b = le.AppendUint32(b, r[0])
		b = le.AppendUint32(b, r[1])
	}
	return b
}

// writeIFD lays out entries at offset start with out-of-line values
// following the directory.
func writeIFD(start uint32, entries []entry) []byte {
	dataOffset := start + 2 + 12*uint32(len(entries)) + 4

	var data []byte
	head := le.AppendUint16(nil, uint16(len(entries)))
	for _, e := range entries {
		head = le.AppendUint16(head, e.tag)
		head = le.AppendUint16(head, e.typ)
		head = le.AppendUint32(head, e.count)
		if len(e.value) <= 4 {
			v := make([]byte, 4)
			copy(v, e.value)
			head = append(head, v...)
			continue
		}
		head = le.AppendUint32(head, dataOffset+uint32(len(data)))
		data = append(data, e.value...)
	}
	head = le.AppendUint32(head, 0)
	return append(head, data...)
}
