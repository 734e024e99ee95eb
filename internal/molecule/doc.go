// Package molecule turns a lyric block into display tokens, an escaped
// annotated source string and the pixel positions of its timing beats.
//
// Source strings use the annotated-text syntax of the song format: a token
// that spans several glyphs is wrapped in braces, ruby follows its base in
// parentheses, and a trailing $ ends a screen row.
package molecule
