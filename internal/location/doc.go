// Package location extracts the GPS coordinate embedded in a photo.
//
// Extraction is a cascade, first success wins:
//
//  1. exif: the GPS sub-IFD as decoded by goexif.
//  2. exif_legacy: tag 0x8825 looked up directly in IFD0 and the GPS
//     directory decoded by hand. Recovers files whose sub-IFD goexif
//     could not load on its own.
//  3. sips: macOS `sips -g allxml`.
//  4. mdls: macOS Spotlight metadata.
//
// The platform tools run behind a ToolRunner. A missing tool reports
// ErrToolUnavailable and its stage is skipped quietly.
//
// Most photos carry no location. Absence is returned as ok=false, never as
// an error.
package location
