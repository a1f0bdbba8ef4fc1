package models

// Categories are the topic labels a quiz can belong to. The prompt, the item
// validator and the ranking screens all read this table.
var Categories = []string{
	"興福寺国宝館",
	"東大寺大仏殿",
	"奈良公園",
	"大江能楽堂",
	"SDGs関係",
}

// FallbackCategory is stored when the generator returns an unknown label
const FallbackCategory = "その他"

// Pseudo-categories used as quiz modes and ranking boards
const (
	ModeRandom = "ランダム10選"
	ModeLikes  = "👍 いいねベスト10"
)

// RankingCategories lists every quiz mode in display order
var RankingCategories = append([]string{ModeRandom, ModeLikes}, Categories...)

// IsCategory reports whether c is one of the topic labels
func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// NormalizeCategory maps unknown labels to FallbackCategory
func NormalizeCategory(c string) string {
	if IsCategory(c) {
		return c
	}
	return FallbackCategory
}

// IsRankingCategory reports whether c is a playable mode
func IsRankingCategory(c string) bool {
	for _, known := range RankingCategories {
		if known == c {
			return true
		}
	}
	return false
}
