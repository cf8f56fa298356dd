// Package vocab holds the ramen-domain word tables shared by the text
// extractor, the candidate search and the decision fuser.
//
// The tables are plain data. Components take a Vocabulary through their
// options so tests can swap in a shorter list.
package vocab

import "strings"

// Vocabulary groups the keyword and exclusion tables.
type Vocabulary struct {
	// ShopNameKeywords promote an OCR line to the front of the shop-name
	// candidates. Includes soup-style words (味噌, 醤油, ...) because menu
	// boards print them next to the shop name.
	ShopNameKeywords []string

	// RamenNameKeywords classify a POI as a ramen shop by its name.
	// Deliberately narrower than ShopNameKeywords: 塩 or 味噌 in a
	// restaurant name says nothing about noodles.
	RamenNameKeywords []string

	// FallbackKeywords are used when no coordinate is available and the
	// recognized text is scanned line by line.
	FallbackKeywords []string

	// ExcludedChains is a denylist of well-known non-ramen chains that are
	// sometimes mis-tagged in the POI data. Matched as substrings.
	ExcludedChains []string
}

// Default returns the built-in tables.
func Default() Vocabulary {
	return Vocabulary{
		ShopNameKeywords: []string{
			"らーめん", "ラーメン", "らぁめん", "ラァメン",
			"拉麺", "中華そば", "中華麺", "つけ麺", "つけめん",
			"麺屋", "麺処", "麺家", "麺道", "麺や",
			"らー麺", "担々麺", "味噌", "醤油", "塩", "豚骨",
		},
		RamenNameKeywords: []string{
			"ラーメン", "らーめん", "らぁめん", "拉麺",
			"中華そば", "つけ麺", "担々麺", "タンタン麺",
			"麺屋", "麺や", "麺処", "麺家", "麺道",
		},
		FallbackKeywords: []string{
			"ラーメン", "らーめん", "らぁめん", "麺屋", "麺処", "中華そば",
		},
		ExcludedChains: []string{
			"マクドナルド", "McDonald", "ドミノ", "ピザ", "Pizza",
			"ケンタッキー", "KFC", "すき家", "吉野家", "松屋",
			"ガスト", "サイゼリヤ", "デニーズ", "ジョナサン",
			"スターバックス", "ドトール", "タリーズ",
			"コンビニ", "セブン", "ファミマ", "ローソン",
		},
	}
}

// ContainsAny reports whether s contains any of the keywords. Latin
// keywords also match case-insensitively.
func ContainsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(s, kw) || strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether name matches the chain denylist. The match is
// an exact substring match, case included.
func (v Vocabulary) IsExcluded(name string) bool {
	for _, ex := range v.ExcludedChains {
		if ex != "" && strings.Contains(name, ex) {
			return true
		}
	}
	return false
}
