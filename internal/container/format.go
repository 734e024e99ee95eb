package container

import (
	"bytes"

	"kashi/internal/decodeerr"
)

// Format identifies a supported file family.
type Format int

const (
	FormatUnknown Format = iota
	// FormatJoy02 is the little-endian JOY-02 lyric file.
	FormatJoy02
	// FormatJoyU2 is a bare big-endian JOY-U2 lyric file, normally found
	// compressed inside a UJK1 container.
	FormatJoyU2
	// FormatUJK is the cartridge container carrying JOY-U2 lyrics, fonts,
	// a title card and audio.
	FormatUJK
)

const (
	MagicJoy02 = "JOY-02"
	MagicJoyU2 = "JOY-U2"
	MagicUJK   = "UJK1"
	MagicLZSS  = "SSZL"
)

func (f Format) String() string {
	switch f {
	case FormatJoy02:
		return "joy02"
	case FormatJoyU2:
		return "joyu2"
	case FormatUJK:
		return "ujk"
	default:
		return "unknown"
	}
}

// Cartridge reports whether lyric glyphs in this format are font-table
// indices rather than Shift_JIS codes.
func (f Format) Cartridge() bool {
	return f == FormatJoyU2 || f == FormatUJK
}

// Detect selects the format from the magic prefix of data.
func Detect(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte(MagicJoy02)):
		return FormatJoy02, nil
	case bytes.HasPrefix(data, []byte(MagicJoyU2)):
		return FormatJoyU2, nil
	case bytes.HasPrefix(data, []byte(MagicUJK)):
		return FormatUJK, nil
	}
	prefix := data
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return FormatUnknown, decodeerr.FormatAt("header", 0, "unrecognized magic %q", prefix)
}
