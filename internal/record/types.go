package record

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Schema selects the layout variant of the lyric and timing sections.
type Schema int

const (
	// SchemaLegacy is little endian; blocks are read until the lyric section
	// is exhausted.
	SchemaLegacy Schema = iota
	// SchemaRevision is little endian; each block must end at or before the
	// timing offset and reading stops once a block reaches it.
	SchemaRevision
	// SchemaCartridge is big endian with font-table glyph indices and
	// delta-encoded event times.
	SchemaCartridge
)

func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaRevision:
		return "revision"
	case SchemaCartridge:
		return "cartridge"
	default:
		return fmt.Sprintf("schema(%d)", int(s))
	}
}

// ParseSchema maps a configuration value to a Schema.
func ParseSchema(value string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "legacy":
		return SchemaLegacy, nil
	case "revision":
		return SchemaRevision, nil
	case "cartridge":
		return SchemaCartridge, nil
	default:
		return SchemaLegacy, fmt.Errorf("unknown schema %q", value)
	}
}

// Order returns the byte order used by the schema.
func (s Schema) Order() binary.ByteOrder {
	if s == SchemaCartridge {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Metadata holds the song header strings. Duration and the track masks are
// only present in JOY-02 files.
type Metadata struct {
	Type, Subtype uint8

	Title      string
	Artist     string
	Writer     string
	Composer   string
	TitleKana  string
	ArtistKana string
	JASRAC     string
	Sample     string

	Duration     uint16
	VocalTracks  uint32
	RhythmTracks uint32
}

// Color is a 5-bit-per-channel palette entry.
type Color struct {
	R, G, B uint8
}

// ColorFromRGB15 unpacks r<<10 | g<<5 | b.
func ColorFromRGB15(v uint16) Color {
	return Color{R: uint8(v>>10) & 0x1f, G: uint8(v>>5) & 0x1f, B: uint8(v) & 0x1f}
}

// Hex renders the color as 8-bit rrggbb.
func (c Color) Hex() string {
	scale := func(v uint8) int { return int(v) * 255 / 31 }
	return fmt.Sprintf("%02x%02x%02x", scale(c.R), scale(c.G), scale(c.B))
}

// PaletteSize is the number of colors at the head of a lyric section.
const PaletteSize = 15

// Palette is the color table referenced by block style indices.
type Palette [PaletteSize]Color

// Color returns the entry at idx or false when idx is outside the table.
func (p Palette) Color(idx uint8) (Color, bool) {
	if int(idx) >= len(p) {
		return Color{}, false
	}
	return p[idx], true
}

// Glyph is one raw lyric character. Code is a packed Shift_JIS code in
// JOY-02 files and a font-table index in cartridge files. Width is zero for
// cartridge glyphs, whose width comes from the font table.
type Glyph struct {
	Font  uint8
	Code  uint16
	Width int
}

// Furigana is a raw ruby group; X is relative to the block origin.
type Furigana struct {
	X     int
	Codes []uint16
}

// InstantFlags marks a zero-duration block.
const InstantFlags = 0xff

// Block is one positioned run of glyphs.
type Block struct {
	// Offset is the absolute file offset of the block record.
	Offset int
	Size   uint16
	Flags  uint16
	X, Y   int
	// AltX and AltY are the secondary positions stored by cartridge files.
	AltX, AltY int

	PreFill, PostFill, PreBorder, PostBorder uint8

	Glyphs   []Glyph
	Furigana []Furigana
}

// Instant reports whether the block is a zero-duration sentinel.
func (b Block) Instant() bool { return b.Flags == InstantFlags }

// StyleKey is the tuple styles are deduplicated by.
type StyleKey struct {
	PreFill, PostFill, PreBorder, PostBorder uint8
}

// Style returns the block's style tuple.
func (b Block) Style() StyleKey {
	return StyleKey{b.PreFill, b.PostFill, b.PreBorder, b.PostBorder}
}

// Lyrics is a decoded lyric section.
type Lyrics struct {
	Palette Palette
	Blocks  []Block
}

// Event is one timing record with an absolute time in milliseconds.
type Event struct {
	Offset  int
	Time    int64
	Payload []byte
}

// Opcode returns the first payload byte, or false for an empty payload.
func (e Event) Opcode() (byte, bool) {
	if len(e.Payload) == 0 {
		return 0, false
	}
	return e.Payload[0], true
}
