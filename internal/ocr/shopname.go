package ocr

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ironsheep/ramen-tools-mcp/internal/vocab"
)

// Line length bounds, counted in characters.
const (
	minLineLen     = 2
	minPlainLen    = 3
	maxPlainLen    = 25
	maxFallbackLen = 25
)

var (
	numericLine = regexp.MustCompile(`^[\p{Nd}.\-\s]+$`)
	brackets    = regexp.MustCompile(`[【】「」『』\[\]()（）〈〉《》]`)
	numberRuns  = regexp.MustCompile(`[\p{Nd}.,:;]+`)
	exclaims    = regexp.MustCompile(`[!！?？]+`)
	spaces      = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// FindShopName picks the most plausible shop name in recognized text using
// the default shop-name keywords.
func FindShopName(text string) (string, bool) {
	return FindShopNameWith(text, vocab.Default().ShopNameKeywords)
}

// FindShopNameWith is FindShopName with an explicit keyword list.
//
// Keyword lines are pushed to the front of the candidate list as they are
// seen, so with several keyword lines the last one wins.
func FindShopNameWith(text string, keywords []string) (string, bool) {
	if text == "" {
		return "", false
	}

	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n < minLineLen {
			continue
		}

		if vocab.ContainsAny(line, keywords) {
			candidates = append([]string{line}, candidates...)
			continue
		}
		if n >= minPlainLen && n <= maxPlainLen && !numericLine.MatchString(line) {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) == 0 {
		return "", false
	}
	name := CleanName(candidates[0])
	return name, name != ""
}

// CleanName strips brackets and exclamation marks, turns number and
// punctuation runs into spaces and collapses whitespace.
func CleanName(s string) string {
	s = brackets.ReplaceAllString(s, "")
	s = numberRuns.ReplaceAllString(s, " ")
	s = exclaims.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FirstKeywordLine returns the first trimmed line of 2 to 25 characters
// containing one of keywords. The line is returned as-is, without cleaning.
func FirstKeywordLine(text string, keywords []string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n < minLineLen || n > maxFallbackLen {
			continue
		}
		if vocab.ContainsAny(line, keywords) {
			return line, true
		}
	}
	return "", false
}
