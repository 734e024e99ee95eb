// Package furigana associates ruby groups with the base glyphs they annotate
// using on-screen pixel positions.
package furigana
