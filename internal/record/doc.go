// Package record reads the typed record tree of a lyric file: metadata,
// palette, positioned lyric blocks with their glyphs and furigana groups,
// timing events, and the cartridge font table.
//
// Every reader walks a container.RawSection with a binread.Reader, so errors
// carry the section name and absolute file offsets.
package record
