package container

import (
	"encoding/binary"

	"kashi/internal/decodeerr"
)

const (
	ringSize   = 0x1000
	ringMask   = ringSize - 1
	ringStart  = 0xfee
	lzssHeader = 16
	minMatch   = 3
	maxMatch   = 0x0f + minMatch
)

// LZSSHeader describes a compressed payload.
type LZSSHeader struct {
	Unknown          uint32
	CompressedSize   int
	DecompressedSize int
}

// ParseLZSSHeader validates the magic and sizes of a compressed block.
func ParseLZSSHeader(block []byte, section string, base int) (LZSSHeader, error) {
	if len(block) < lzssHeader {
		return LZSSHeader{}, decodeerr.Truncated(section, base, lzssHeader, len(block))
	}
	if string(block[:4]) != MagicLZSS {
		return LZSSHeader{}, decodeerr.FormatAt(section, base, "bad compression magic %q", block[:4])
	}
	hdr := LZSSHeader{
		Unknown:          binary.LittleEndian.Uint32(block[4:]),
		CompressedSize:   int(binary.LittleEndian.Uint32(block[8:])),
		DecompressedSize: int(binary.LittleEndian.Uint32(block[12:])),
	}
	if hdr.CompressedSize < 0 || hdr.CompressedSize > len(block)-lzssHeader {
		return LZSSHeader{}, decodeerr.Truncated(section, base+lzssHeader, hdr.CompressedSize, len(block)-lzssHeader)
	}
	return hdr, nil
}

// Decompress inflates a length-prefixed "SSZL" block. Trailing bytes after
// the declared compressed size are ignored.
func Decompress(block []byte, section string, base int) ([]byte, error) {
	hdr, err := ParseLZSSHeader(block, section, base)
	if err != nil {
		return nil, err
	}
	payload := block[lzssHeader : lzssHeader+hdr.CompressedSize]
	return decompressPayload(payload, hdr.DecompressedSize, section, base+lzssHeader)
}

// DecompressPayload inflates a raw compressed stream without header into
// exactly size bytes.
func DecompressPayload(src []byte, size int) ([]byte, error) {
	return decompressPayload(src, size, "lzss", 0)
}

func decompressPayload(src []byte, size int, section string, base int) ([]byte, error) {
	// No input byte expands to more than a full back-reference, so a larger
	// declared size cannot be reached from src.
	if size > maxMatch*len(src) {
		return nil, decodeerr.Truncated(section, base, (size+maxMatch-1)/maxMatch, len(src))
	}
	var ring [ringSize]byte
	cursor := ringStart
	out := make([]byte, 0, size)
	p := 0

	truncated := func(need int) error {
		return decodeerr.Truncated(section, base+p, need, len(src)-p)
	}

	for len(out) < size {
		if p >= len(src) {
			return nil, truncated(1)
		}
		flags := src[p]
		p++
		for bit := 0; bit < 8 && len(out) < size; bit++ {
			if flags&1 == 1 {
				if p >= len(src) {
					return nil, truncated(1)
				}
				c := src[p]
				p++
				out = append(out, c)
				ring[cursor] = c
				cursor = (cursor + 1) & ringMask
			} else {
				if p+2 > len(src) {
					return nil, truncated(2)
				}
				a, b := int(src[p]), int(src[p+1])
				p += 2
				offset := (b&0xf0)<<4 | a
				length := b&0x0f + minMatch
				for i := 0; i < length && len(out) < size; i++ {
					c := ring[(offset+i)&ringMask]
					out = append(out, c)
					ring[cursor] = c
					cursor = (cursor + 1) & ringMask
				}
			}
			flags >>= 1
		}
	}
	return out, nil
}
