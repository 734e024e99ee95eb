package record

import (
	"encoding/binary"
	"fmt"

	"kashi/internal/binread"
	"kashi/internal/decodeerr"
	"kashi/internal/container"
)

// FontCount is the number of fonts in a cartridge font file.
const FontCount = 3

// FontEntry is one glyph of a cartridge font. Data is a 4bpp bitmap with
// Stride bytes per row, high nibble first.
type FontEntry struct {
	Offset  int
	Code    uint16
	Advance uint8
	Size    uint8
	Width   uint8
	Height  uint8
	Stride  uint16
	Data    []byte
}

// Font is one font section of the font file.
type Font struct {
	Offset  int
	Entries []FontEntry
}

// Entry returns the glyph at index, or false when it is out of range.
func (f *Font) Entry(index uint16) (FontEntry, bool) {
	if int(index) >= len(f.Entries) {
		return FontEntry{}, false
	}
	return f.Entries[index], true
}

// FontFile is the decompressed cartridge font file.
type FontFile struct {
	Fonts [FontCount]Font
}

// ReadFonts parses the three font sections of sec.
func ReadFonts(sec container.RawSection) (*FontFile, error) {
	r := binread.New(sec.Data, binary.BigEndian, sec.Name, sec.Offset)
	var offsets, lengths [FontCount]uint32
	for i := range offsets {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	for i := range lengths {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		lengths[i] = v
	}

	ff := &FontFile{}
	for i := range ff.Fonts {
		name := fmt.Sprintf("%s.font%d", sec.Name, i)
		fr, err := r.Sub(name, int(offsets[i]), int(lengths[i]))
		if err != nil {
			return nil, err
		}
		font, err := readFont(fr)
		if err != nil {
			return nil, err
		}
		ff.Fonts[i] = font
	}
	return ff, nil
}

// readFont parses one font section. All offsets inside it are relative to
// the section start.
func readFont(r *binread.Reader) (Font, error) {
	font := Font{Offset: r.Base()}
	// two unknown u16 fields
	if err := r.Skip(4); err != nil {
		return Font{}, err
	}
	tableOff, err := r.U32()
	if err != nil {
		return Font{}, err
	}
	tableSize, err := r.U32()
	if err != nil {
		return Font{}, err
	}
	if err := r.Seek(int(tableOff)); err != nil {
		return Font{}, err
	}
	count := int(tableSize / 4)
	if count > r.Remaining()/4 {
		return Font{}, decodeerr.Truncated(r.Section(), r.Abs(), count*4, r.Remaining())
	}
	entryOffsets := make([]uint32, count)
	for i := range entryOffsets {
		if entryOffsets[i], err = r.U32(); err != nil {
			return Font{}, err
		}
	}

	font.Entries = make([]FontEntry, 0, count)
	for _, off := range entryOffsets {
		var entry FontEntry
		err := r.At(int(off), func(r *binread.Reader) error {
			var err error
			entry, err = readFontEntry(r)
			return err
		})
		if err != nil {
			return Font{}, err
		}
		font.Entries = append(font.Entries, entry)
	}
	return font, nil
}

func readFontEntry(r *binread.Reader) (FontEntry, error) {
	e := FontEntry{Offset: r.Abs()}
	if err := r.Skip(8); err != nil {
		return FontEntry{}, err
	}
	var err error
	if e.Code, err = r.U16(); err != nil {
		return FontEntry{}, err
	}
	for _, dst := range []*uint8{&e.Advance, &e.Size, &e.Width, &e.Height} {
		if *dst, err = r.U8(); err != nil {
			return FontEntry{}, err
		}
	}
	if e.Stride, err = r.U16(); err != nil {
		return FontEntry{}, err
	}
	if err := r.Skip(6); err != nil {
		return FontEntry{}, err
	}
	// the bitmap length is the one little-endian field in the file
	length, err := r.U16LE()
	if err != nil {
		return FontEntry{}, err
	}
	if e.Data, err = r.Bytes(int(length)); err != nil {
		return FontEntry{}, err
	}
	return e, nil
}
