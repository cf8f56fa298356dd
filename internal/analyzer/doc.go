// Package analyzer runs the whole pipeline for one photo: decode and
// orient, decide the shop, apply the final name fallbacks, locate the bowl
// and crop it.
//
// The final fallbacks live here rather than in the shop package. When the
// decision carries no name, the recognized text is searched for a shop name
// directly (ocr_direct); failing that the placeholder name is used
// (not_found).
package analyzer
