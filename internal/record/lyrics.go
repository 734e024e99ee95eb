package record

import (
	"errors"

	"kashi/internal/binread"
	"kashi/internal/container"
	"kashi/internal/decodeerr"
)

// blockHeader is the fixed part of a block up to and including the glyph
// count.
func blockHeader(schema Schema) int {
	if schema == SchemaCartridge {
		return 18
	}
	return 14
}

// ReadLyrics parses the palette and block list of a lyric section.
func ReadLyrics(sec container.RawSection, schema Schema) (Lyrics, error) {
	r := binread.New(sec.Data, schema.Order(), sec.Name, sec.Offset)
	var lyr Lyrics
	for i := range lyr.Palette {
		v, err := r.U16()
		if err != nil {
			return Lyrics{}, err
		}
		lyr.Palette[i] = ColorFromRGB15(v)
	}

	for r.Remaining() > 0 {
		if schema != SchemaRevision && r.Remaining() < blockHeader(schema) {
			// alignment padding after the last block
			break
		}
		start := r.Abs()
		block, err := readBlock(r, schema)
		if err != nil {
			if schema == SchemaRevision && errors.Is(err, decodeerr.ErrTruncated) {
				return Lyrics{}, decodeerr.FormatAt(sec.Name, start,
					"block %d extends past the timing section at 0x%x", len(lyr.Blocks), sec.Offset+len(sec.Data))
			}
			return Lyrics{}, err
		}
		lyr.Blocks = append(lyr.Blocks, block)
	}
	return lyr, nil
}

func readBlock(r *binread.Reader, schema Schema) (Block, error) {
	b := Block{Offset: r.Abs()}
	var err error
	if b.Size, err = r.U16(); err != nil {
		return Block{}, err
	}
	if b.Flags, err = r.U16(); err != nil {
		return Block{}, err
	}
	if b.X, err = readInt16(r); err != nil {
		return Block{}, err
	}
	if b.Y, err = readInt16(r); err != nil {
		return Block{}, err
	}
	for _, dst := range []*uint8{&b.PreFill, &b.PostFill, &b.PreBorder, &b.PostBorder} {
		if *dst, err = r.U8(); err != nil {
			return Block{}, err
		}
	}
	if schema == SchemaCartridge {
		if b.AltX, err = readInt16(r); err != nil {
			return Block{}, err
		}
		if b.AltY, err = readInt16(r); err != nil {
			return Block{}, err
		}
	}

	count, err := r.U16()
	if err != nil {
		return Block{}, err
	}
	b.Glyphs = make([]Glyph, 0, count)
	for i := 0; i < int(count); i++ {
		var g Glyph
		if g.Font, err = r.U8(); err != nil {
			return Block{}, err
		}
		if g.Code, err = r.U16(); err != nil {
			return Block{}, err
		}
		if schema != SchemaCartridge {
			if g.Width, err = readInt16(r); err != nil {
				return Block{}, err
			}
		}
		b.Glyphs = append(b.Glyphs, g)
	}

	furiCount, err := r.U16()
	if err != nil {
		return Block{}, err
	}
	b.Furigana = make([]Furigana, 0, furiCount)
	for i := 0; i < int(furiCount); i++ {
		length, err := r.U16()
		if err != nil {
			return Block{}, err
		}
		x, err := readInt16(r)
		if err != nil {
			return Block{}, err
		}
		codes, err := r.U16s(int(length))
		if err != nil {
			return Block{}, err
		}
		b.Furigana = append(b.Furigana, Furigana{X: x, Codes: codes})
	}
	return b, nil
}

func readInt16(r *binread.Reader) (int, error) {
	v, err := r.U16()
	return int(v), err
}
