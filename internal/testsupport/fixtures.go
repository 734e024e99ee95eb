package testsupport

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/japanese"

	"kashi/internal/container"
)

// Song describes a synthetic lyric file. Joy02 and JoyU2 encode it in the
// respective layouts so tests can exercise the full decode path without
// shipping proprietary samples.
type Song struct {
	Title, Artist, Writer, Composer string
	TitleKana, ArtistKana           string
	JASRAC, Sample                  string

	Duration                  uint16
	VocalTracks, RhythmTracks uint32
	VolUpTime                 uint32

	Colors [15]uint16
	Blocks []Block
	// Events carry absolute times in milliseconds. JoyU2 encodes them as
	// deltas.
	Events []Event
}

// Block is one positioned lyric line.
type Block struct {
	Flags                                    uint16
	X, Y                                     uint16
	PreFill, PostFill, PreBorder, PostBorder uint8
	Glyphs                                   []Glyph
	Furigana                                 []Furigana
}

// Glyph is a lyric character. Width is ignored by the cartridge layout.
type Glyph struct {
	Font  uint8
	Code  uint16
	Width uint16
}

// Furigana is a ruby group positioned relative to its block.
type Furigana struct {
	X     uint16
	Codes []uint16
}

// Event is one timing record.
type Event struct {
	Time    uint32
	Payload []byte
}

// RGB15 packs 5-bit channels the way lyric palettes store them.
func RGB15(r, g, b uint8) uint16 {
	return uint16(r&0x1f)<<10 | uint16(g&0x1f)<<5 | uint16(b&0x1f)
}

// Start returns a scroll-start event. Coarse selects the x10 speed encoding.
func Start(ms uint32, speed uint8, coarse bool) Event {
	op := byte(0x0c)
	if coarse {
		op = 0x00
	}
	return Event{Time: ms, Payload: []byte{op, speed}}
}

// SetSpeed returns a speed-change event. Coarse selects the x10 encoding.
func SetSpeed(ms uint32, speed uint8, coarse bool) Event {
	op := byte(0x0d)
	if coarse {
		op = 0x01
	}
	return Event{Time: ms, Payload: []byte{op, speed}}
}

// SJISCodes converts text into 16-bit legacy glyph codes: double-byte
// characters are packed high byte first, everything else is one code per
// byte. It panics on text Shift_JIS cannot represent.
func SJISCodes(text string) []uint16 {
	raw := sjis(text)
	var codes []uint16
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c >= 0x80 && c < 0xa0 || c >= 0xe0) && i+1 < len(raw) {
			codes = append(codes, uint16(c)<<8|uint16(raw[i+1]))
			i++
			continue
		}
		codes = append(codes, uint16(c))
	}
	return codes
}

// LegacyGlyphs builds one glyph per character of text, each width pixels
// wide.
func LegacyGlyphs(text string, width uint16) []Glyph {
	codes := SJISCodes(text)
	glyphs := make([]Glyph, len(codes))
	for i, code := range codes {
		glyphs[i] = Glyph{Code: code, Width: width}
	}
	return glyphs
}

func sjis(text string) []byte {
	out, err := japanese.ShiftJIS.NewEncoder().String(text)
	if err != nil {
		panic(fmt.Sprintf("testsupport: encode %q: %v", text, err))
	}
	return []byte(out)
}

type encoder struct {
	order binary.AppendByteOrder
	buf   []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16) { e.buf = e.order.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32) { e.buf = e.order.AppendUint32(e.buf, v) }
func (e *encoder) raw(b []byte) { e.buf = append(e.buf, b...) }

func (e *encoder) put32(at int, v uint32) {
	tmp := e.order.AppendUint32(nil, v)
	copy(e.buf[at:], tmp)
}

func (s Song) strings() []string {
	return []string{s.Title, s.Artist, s.Writer, s.Composer,
		s.TitleKana, s.ArtistKana, s.JASRAC, s.Sample}
}

func (s Song) metadata(order binary.AppendByteOrder, joy02 bool) []byte {
	headerLen := 2 + 2*8
	if joy02 {
		headerLen += 2 + 4 + 4
	}
	var pool []byte
	offsets := make([]uint16, 0, 8)
	for _, str := range s.strings() {
		offsets = append(offsets, uint16(headerLen+len(pool)))
		pool = append(pool, sjis(str)...)
		pool = append(pool, 0)
	}
	e := &encoder{order: order}
	e.u8(1)
	e.u8(0)
	for _, off := range offsets {
		e.u16(off)
	}
	if joy02 {
		e.u16(s.Duration)
		e.u32(s.VocalTracks)
		e.u32(s.RhythmTracks)
	}
	e.raw(pool)
	return e.buf
}

func (s Song) lyrics(order binary.AppendByteOrder, cartridge bool) []byte {
	e := &encoder{order: order}
	for _, c := range s.Colors {
		e.u16(c)
	}
	for _, b := range s.Blocks {
		body := &encoder{order: order}
		body.u16(b.Flags)
		body.u16(b.X)
		body.u16(b.Y)
		body.u8(b.PreFill)
		body.u8(b.PostFill)
		body.u8(b.PreBorder)
		body.u8(b.PostBorder)
		if cartridge {
			body.u16(b.X)
			body.u16(b.Y)
		}
		body.u16(uint16(len(b.Glyphs)))
		for _, g := range b.Glyphs {
			body.u8(g.Font)
			body.u16(g.Code)
			if !cartridge {
				body.u16(g.Width)
			}
		}
		body.u16(uint16(len(b.Furigana)))
		for _, f := range b.Furigana {
			body.u16(uint16(len(f.Codes)))
			body.u16(f.X)
			for _, c := range f.Codes {
				body.u16(c)
			}
		}
		e.u16(uint16(len(body.buf) + 2))
		e.raw(body.buf)
	}
	return e.buf
}

// Joy02 encodes the song as a little-endian JOY-02 file.
func (s Song) Joy02() []byte {
	order := binary.LittleEndian
	e := &encoder{order: order}
	e.raw([]byte(container.MagicJoy02))
	fields := len(e.buf)
	e.raw(make([]byte, 16))

	offMeta := len(e.buf)
	e.raw(s.metadata(order, true))
	offLyrics := len(e.buf)
	e.raw(s.lyrics(order, false))
	offTiming := len(e.buf)
	for _, ev := range s.Events {
		e.u32(ev.Time)
		e.u8(uint8(len(ev.Payload)))
		e.raw(ev.Payload)
	}

	e.put32(fields, uint32(offMeta))
	e.put32(fields+4, uint32(offLyrics))
	e.put32(fields+8, uint32(offTiming))
	e.put32(fields+12, s.VolUpTime)
	return e.buf
}

// JoyU2 encodes the song as a big-endian JOY-U2 file with the same lyrics in
// all three size variants.
func (s Song) JoyU2() []byte {
	order := binary.BigEndian
	e := &encoder{order: order}
	e.raw([]byte(container.MagicJoyU2))
	fields := len(e.buf)
	e.raw(make([]byte, 32))

	offsets := []int{len(e.buf)}
	e.raw(s.metadata(order, false))
	lyrics := s.lyrics(order, true)
	timing := s.cartridgeTiming()
	for v := 0; v < container.SizeVariants; v++ {
		offsets = append(offsets, len(e.buf))
		e.raw(lyrics)
		offsets = append(offsets, len(e.buf))
		e.raw(timing)
	}
	offsets = append(offsets, len(e.buf))
	for i, off := range offsets {
		e.put32(fields+4*i, uint32(off))
	}
	return e.buf
}

func (s Song) cartridgeTiming() []byte {
	var out []byte
	var last uint32
	for _, ev := range s.Events {
		out = append(out, VarUint(uint64(ev.Time-last))...)
		last = ev.Time
		out = append(out, uint8(len(ev.Payload)))
		out = append(out, ev.Payload...)
	}
	return out
}

// VarUint encodes v as big-endian 7-bit groups with continuation bits.
func VarUint(v uint64) []byte {
	groups := []byte{byte(v & 0x7f)}
	for v >>= 7; v > 0; v >>= 7 {
		groups = append(groups, byte(v&0x7f)|0x80)
	}
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	return groups
}

// FontGlyph is one font-table entry.
type FontGlyph struct {
	Code                         uint16
	Advance, Size, Width, Height uint8
	Stride                       uint16
	Data                         []byte
}

// FontFile encodes a cartridge font file whose three fonts all hold glyphs.
func FontFile(glyphs []FontGlyph) []byte {
	section := fontSection(glyphs)
	e := &encoder{order: binary.BigEndian}
	header := 24
	for i := 0; i < 3; i++ {
		e.u32(uint32(header + i*len(section)))
	}
	for i := 0; i < 3; i++ {
		e.u32(uint32(len(section)))
	}
	for i := 0; i < 3; i++ {
		e.raw(section)
	}
	return e.buf
}

func fontSection(glyphs []FontGlyph) []byte {
	const tableOff = 12
	e := &encoder{order: binary.BigEndian}
	e.u16(0)
	e.u16(0)
	e.u32(tableOff)
	e.u32(uint32(4 * len(glyphs)))
	table := len(e.buf)
	e.raw(make([]byte, 4*len(glyphs)))
	for i, g := range glyphs {
		e.put32(table+4*i, uint32(len(e.buf)))
		e.raw(make([]byte, 8))
		e.u16(g.Code)
		e.u8(g.Advance)
		e.u8(g.Size)
		e.u8(g.Width)
		e.u8(g.Height)
		e.u16(g.Stride)
		e.raw(make([]byte, 6))
		e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(len(g.Data)))
		e.raw(g.Data)
	}
	return e.buf
}

// LZSS wraps data in an "SSZL" block made only of literal groups.
func LZSS(data []byte) []byte {
	var payload []byte
	for i := 0; i < len(data); i += 8 {
		end := min(i+8, len(data))
		payload = append(payload, 0xff)
		payload = append(payload, data[i:end]...)
	}
	out := []byte(container.MagicLZSS)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	return append(out, payload...)
}

// UJK assembles a UJK1 container around a JOY-U2 payload and a font file.
// Both are stored LZSS-compressed; title and audio are stored raw.
func UJK(joyU2, fonts, title, audio []byte) []byte {
	const hdrSize = 16
	e := &encoder{order: binary.BigEndian}
	e.raw([]byte(container.MagicUJK))
	e.u32(hdrSize)
	e.u32(0)
	e.u32(0)
	tableAt := len(e.buf)
	e.raw(make([]byte, len(container.UJKKey())))

	titleOff := len(e.buf)
	e.raw(title)
	audioOff := len(e.buf)
	e.raw(audio)
	lyricsOff := len(e.buf)
	lyrics := LZSS(joyU2)
	e.raw(lyrics)
	fontsOff := len(e.buf)
	packedFonts := LZSS(fonts)
	e.raw(packedFonts)

	table := &encoder{order: binary.BigEndian}
	for _, v := range []int{audioOff, len(audio), titleOff, len(title),
		lyricsOff, len(lyrics), fontsOff, len(packedFonts)} {
		table.u32(uint32(v))
	}
	plain := make([]byte, len(container.UJKKey()))
	copy(plain, table.buf)
	copy(e.buf[tableAt:], container.XOR(plain, container.UJKKey()))
	e.put32(8, uint32(len(e.buf)))
	return e.buf
}
