// Package decode runs the full pipeline from file bytes to a lyric-timing
// document: container resolution, record parsing, glyph decoding, furigana
// alignment, molecule building, timing reconstruction and assembly.
//
// Decode is a pure function of its input and options and is safe to call
// from many goroutines. DecodeAll fans out over files with a bounded worker
// count.
package decode
