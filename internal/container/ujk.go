package container

import (
	"encoding/binary"

	"kashi/internal/binread"
	"kashi/internal/decodeerr"
)

// ujkPad deobfuscates the 64-byte offset table of a UJK1 container.
var ujkPad = []byte{
	0xb2, 0x39, 0x33, 0x98, 0xa6, 0x16, 0x4f, 0x0e, 0x90, 0x30, 0xfd, 0x17, 0x0b, 0x4e, 0xe0, 0xf2,
	0xe3, 0x81, 0x57, 0x1d, 0xc1, 0x7f, 0x4b, 0x2c, 0xa1, 0x4f, 0x1d, 0xac, 0x7f, 0x00, 0x9a, 0xb6,
	0xd7, 0xdf, 0xfe, 0x83, 0x97, 0xea, 0x45, 0xba, 0xa5, 0x4e, 0x82, 0x28, 0x6b, 0x85, 0x3f, 0xdb,
	0x95, 0xd8, 0xbb, 0x6e, 0x4f, 0x4d, 0x4f, 0xe6, 0xae, 0x12, 0xe8, 0xff, 0x89, 0x07, 0x95, 0x60,
}

// UJKKey returns a copy of the offset-table key.
func UJKKey() []byte {
	key := make([]byte, len(ujkPad))
	copy(key, ujkPad)
	return key
}

// UJKTable is the deobfuscated offset table of a UJK1 container.
type UJKTable struct {
	AudioOffset, AudioSize   uint32
	TitleOffset, TitleSize   uint32
	LyricsOffset, LyricsSize uint32
	FontsOffset, FontsSize   uint32
}

func (c *Container) openUJK(data []byte) error {
	r := binread.New(data, binary.BigEndian, "header", 0)
	if err := r.Skip(len(MagicUJK)); err != nil {
		return err
	}
	for _, name := range []string{"hdr_size", "file_size", "checksum"} {
		v, err := r.U32()
		if err != nil {
			return err
		}
		c.header(name, v)
	}
	hdrSize := int(c.Header[0].Value)

	raw, err := r.Sub("offset_table", hdrSize, len(ujkPad))
	if err != nil {
		return err
	}
	plain := XOR(raw.Buffer(), ujkPad)
	table, err := parseUJKTable(plain, hdrSize)
	if err != nil {
		return err
	}
	c.header("audio_off", table.AudioOffset)
	c.header("audio_size", table.AudioSize)
	c.header("title_off", table.TitleOffset)
	c.header("title_size", table.TitleSize)
	c.header("lyrics_off", table.LyricsOffset)
	c.header("lyrics_size", table.LyricsSize)
	c.header("fonts_off", table.FontsOffset)
	c.header("fonts_size", table.FontsSize)

	title, err := slice(data, "", SectionTitleCard, int(table.TitleOffset), int(table.TitleOffset)+int(table.TitleSize))
	if err != nil {
		return err
	}
	c.add(title)

	audio, err := slice(data, "", SectionAudio, int(table.AudioOffset), int(table.AudioOffset)+int(table.AudioSize))
	if err != nil {
		return err
	}
	c.add(audio)

	fonts, err := inflate(data, SectionFonts, int(table.FontsOffset))
	if err != nil {
		return err
	}
	c.add(fonts)

	payload, err := inflate(data, SectionPayload, int(table.LyricsOffset))
	if err != nil {
		return err
	}
	c.add(payload)
	return c.openJoyU2(payload.Data, SectionPayload)
}

func parseUJKTable(plain []byte, base int) (UJKTable, error) {
	r := binread.New(plain, binary.BigEndian, "offset_table", base)
	var fields [8]uint32
	for i := range fields {
		v, err := r.U32()
		if err != nil {
			return UJKTable{}, err
		}
		fields[i] = v
	}
	return UJKTable{
		AudioOffset: fields[0], AudioSize: fields[1],
		TitleOffset: fields[2], TitleSize: fields[3],
		LyricsOffset: fields[4], LyricsSize: fields[5],
		FontsOffset: fields[6], FontsSize: fields[7],
	}, nil
}

// inflate decompresses the LZSS block starting at off. The block carries its
// own compressed size, so it is bounded by the end of the file only.
func inflate(data []byte, name string, off int) (RawSection, error) {
	if off < 0 || off > len(data) {
		return RawSection{}, decodeerr.Truncated(name, off, lzssHeader, 0)
	}
	out, err := Decompress(data[off:], name, off)
	if err != nil {
		return RawSection{}, err
	}
	return RawSection{Name: name, Offset: off, Data: out}, nil
}
