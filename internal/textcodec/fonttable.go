package textcodec

import (
	"kashi/internal/decodeerr"
	"kashi/internal/record"
)

// exceptions maps font codes that fall outside every systematic range.
var exceptions = map[uint16]string{
	0x0121: " ",
	0x0128: " ",
	0x0130: " ",
	0x0134: " ",
	0xa477: "ー",
	0xad21: "・",
}

// codeRange maps [first, last] onto consecutive runes starting at base+first.
type codeRange struct {
	first, last uint16
	base        rune
}

// ranges are checked in order after the exception table.
var ranges = []codeRange{
	{0xa021, 0xa073, 0x3040 - 0xa020}, // hiragana
	{0xa121, 0xa176, 0x30a0 - 0xa120}, // katakana
	{0xa321, 0xa373, 0x3040 - 0xa320}, // hiragana, ruby
	{0xa421, 0xa476, 0x30a0 - 0xa420}, // katakana, ruby
	{0xa820, 0xa87f, -0xa800},         // ASCII
}

// FontTable decodes cartridge glyph indices through one font.
type FontTable struct {
	font *record.Font
}

// NewFontTable wraps font, normally font 0 of the file.
func NewFontTable(font *record.Font) *FontTable {
	return &FontTable{font: font}
}

func (*FontTable) Name() string { return "fonttable" }

func (f *FontTable) entry(index uint16) (record.FontEntry, error) {
	e, ok := f.font.Entry(index)
	if !ok {
		return record.FontEntry{}, decodeerr.Formatf("fonts", "glyph index %d outside font table of %d entries", index, len(f.font.Entries))
	}
	return e, nil
}

// DecodeGlyph resolves a glyph index to its font code and maps the code.
func (f *FontTable) DecodeGlyph(index uint16) (string, error) {
	e, err := f.entry(index)
	if err != nil {
		return "", err
	}
	if text, ok := MapFontCode(e.Code); ok {
		return text, nil
	}
	return "", &decodeerr.UnmappedGlyphError{
		Codec:  "fonttable",
		Code:   e.Code,
		Width:  int(e.Width),
		Height: int(e.Height),
		Bitmap: Bitmap(e),
	}
}

// GlyphWidth is the advance of the glyph's font entry.
func (f *FontTable) GlyphWidth(g record.Glyph) (int, error) {
	e, err := f.entry(g.Code)
	if err != nil {
		return 0, err
	}
	return int(e.Advance), nil
}

// FuriganaWidth sums the bitmap widths of the ruby glyphs.
func (f *FontTable) FuriganaWidth(codes []uint16) (int, error) {
	width := 0
	for _, code := range codes {
		e, err := f.entry(code)
		if err != nil {
			return 0, err
		}
		width += int(e.Width)
	}
	return width, nil
}

// MapFontCode maps a cartridge font code to text.
func MapFontCode(code uint16) (string, bool) {
	if text, ok := exceptions[code]; ok {
		return text, true
	}
	for _, r := range ranges {
		if code >= r.first && code <= r.last {
			return string(rune(code) + r.base), true
		}
	}
	if code >= 0x8000 && code <= 0x9fff || code >= 0xe000 {
		return decodePacked(code)
	}
	return "", false
}
