// Package textcodec maps raw glyph codes to text and pixel widths.
//
// Two strategies implement Strategy: Legacy interprets 16-bit codes as packed
// Shift_JIS and takes widths from the glyph records, while FontTable resolves
// cartridge glyph indices through font 0 of the font file and a fixed set of
// code ranges. The rest of the pipeline only sees the interface.
package textcodec
