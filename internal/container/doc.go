// Package container turns raw karaoke files into named byte sections.
//
// Detect selects the format from the magic prefix, Open resolves the
// format's offset table, deobfuscates the cartridge header with XOR,
// inflates LZSS-compressed payloads with Decompress, and returns one
// RawSection per logical region (metadata, lyrics, timing, fonts, audio,
// title card). Sections are plain owned buffers; nothing downstream reads
// the original file again.
package container
