// Package ocr reads text from ramen photos and picks out a likely shop name.
//
// Recognition is delegated to an Engine. Two engines ship with the package:
//
//   - Tesseract, through gosseract/v2. Needs cgo and an installed Tesseract
//     with the jpn and eng language data.
//   - Google Cloud Vision TEXT_DETECTION. Needs Application Default
//     Credentials or a service-account key file.
//
// # Prerequisites
//
// Tesseract must be installed on the system for the tesseract engine:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-jpn
//   - macOS: brew install tesseract tesseract-lang
//
// # Failure Model
//
// Text is an optional signal. Extractor.ExtractText never returns an error:
// a missing engine, a failing engine and an empty result all come back as
// ("", false) and are logged.
//
// # Shop Names
//
// FindShopName scans recognized text line by line. Lines containing a
// ramen-domain keyword (麺屋, らーめん, 中華そば, ...) win over any other line
// regardless of position. Otherwise the first plausible line of 3 to 25
// characters is used. The winner is cleaned of brackets and number runs.
package ocr
