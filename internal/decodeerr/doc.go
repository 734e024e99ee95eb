// Package decodeerr defines the failure taxonomy shared by every decoding
// stage.
//
// Structural problems (bad magic, inconsistent offsets, beat/delta count
// mismatches) are FormatError values, reads past the end of a buffer are
// TruncatedDataError values, and glyph codes without a codec rule are
// UnmappedGlyphError values. All three abort the decode of a file. Timing
// overlaps are reported as OverlapError values which callers may choose to
// treat as fatal.
//
// Each type unwraps to an exported sentinel so callers can branch with
// errors.Is without caring about the payload.
package decodeerr
