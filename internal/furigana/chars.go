package furigana

import "strings"

// combining are the small kana that attach to the preceding sound.
const combining = "ぁぃぅぇぉゃゅょゎゕゖァィゥェォャュョヮヵヶ"

// nonRuby never carries furigana and bounds the alignment search.
const nonRuby = " 　？！?!…。、.,-「」―"

// IsCombining reports whether r is a small kana.
func IsCombining(r rune) bool {
	return strings.ContainsRune(combining, r)
}

// AllCombining reports whether text is non-empty and made only of small kana.
func AllCombining(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !IsCombining(r) {
			return false
		}
	}
	return true
}

// Furiganable reports whether text can carry ruby. Whitespace, punctuation
// and kana cannot.
func Furiganable(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if furiganableRune(r) {
			return true
		}
	}
	return false
}

func furiganableRune(r rune) bool {
	if strings.ContainsRune(nonRuby, r) {
		return false
	}
	return r < 0x3040 || r > 0x30ff
}

// BeatCount is the number of timing subdivisions a ruby text spans: one per
// character, except that small kana after the first character share the
// previous beat.
func BeatCount(text string) int {
	beats := 0
	i := 0
	for _, r := range text {
		if i == 0 || !IsCombining(r) {
			beats++
		}
		i++
	}
	return beats
}
