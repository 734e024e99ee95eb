package textcodec

import (
	"strings"

	"kashi/internal/record"
)

// shades runs from full intensity to blank.
const shades = "@#&WTIwtoi*+-,. "

// Bitmap renders a 4bpp glyph as ASCII art, two columns per pixel inside a
// +--+ frame.
func Bitmap(e record.FontEntry) string {
	width, height := int(e.Width), int(e.Height)
	frame := "+" + strings.Repeat("--", width) + "+\n"

	var b strings.Builder
	b.WriteString(frame)
	for y := 0; y < height; y++ {
		b.WriteByte('|')
		for x := 0; x < width; x++ {
			shade := shades[len(shades)-1]
			idx := y*int(e.Stride) + x/2
			if idx < len(e.Data) {
				shift := 4
				if x&1 == 1 {
					shift = 0
				}
				shade = shades[(e.Data[idx]>>shift)&0xf]
			}
			b.WriteByte(shade)
			b.WriteByte(shade)
		}
		b.WriteString("|\n")
	}
	b.WriteString(frame)
	return b.String()
}
