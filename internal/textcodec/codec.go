package textcodec

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"kashi/internal/decodeerr"
	"kashi/internal/record"
)

// Strategy resolves glyph identity and geometry for one file generation.
type Strategy interface {
	// DecodeGlyph maps one raw code to text.
	DecodeGlyph(code uint16) (string, error)
	// GlyphWidth returns the horizontal advance of a lyric glyph in pixels.
	GlyphWidth(g record.Glyph) (int, error)
	// FuriganaWidth returns the pixel width of a ruby group.
	FuriganaWidth(codes []uint16) (int, error)
	Name() string
}

// DecodeString decodes every code of a ruby group or glyph run.
func DecodeString(s Strategy, codes []uint16) (string, error) {
	var b strings.Builder
	for _, code := range codes {
		text, err := s.DecodeGlyph(code)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// LegacyFuriganaAdvance is the assumed width of one ruby character in JOY-02
// files, which do not store ruby geometry.
const LegacyFuriganaAdvance = 24

// Legacy decodes JOY-02 glyph codes.
type Legacy struct{}

func (Legacy) Name() string { return "legacy" }

// DecodeGlyph treats codes below 0x100 as single bytes and everything else
// as a double-byte character, high byte first.
func (Legacy) DecodeGlyph(code uint16) (string, error) {
	text, ok := decodePacked(code)
	if !ok {
		return "", &decodeerr.UnmappedGlyphError{Codec: "legacy", Code: code}
	}
	return text, nil
}

func (Legacy) GlyphWidth(g record.Glyph) (int, error) { return g.Width, nil }

func (Legacy) FuriganaWidth(codes []uint16) (int, error) {
	return LegacyFuriganaAdvance * len(codes), nil
}

// decodePacked does not validate the lead byte. A code in 0x0100..0x7FFF
// deliberately yields two single-byte characters, matching how existing
// JOY-02 decoders read such codes.
func decodePacked(code uint16) (string, bool) {
	var raw []byte
	if code < 0x100 {
		raw = []byte{byte(code)}
	} else {
		raw = []byte{byte(code >> 8), byte(code)}
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil || len(out) == 0 {
		return "", false
	}
	text := string(out)
	if strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}
