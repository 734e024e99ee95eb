package decode

import (
	"fmt"
	"log/slog"
	"time"

	"kashi/internal/container"
	"kashi/internal/furigana"
	"kashi/internal/record"
)

// DefaultCartridgeOffset is the playback calibration applied to cartridge
// songs.
const DefaultCartridgeOffset = 200 * time.Millisecond

// Options tune a decode call.
type Options struct {
	// Schema selects the JOY-02 layout; cartridge files ignore it.
	Schema record.Schema
	// SizeVariant picks one of the JOY-U2 lyric/timing pairs.
	SizeVariant int
	// Radius bounds the furigana search in pixels.
	Radius int
	// Policy settles glyphs reached by more than one ruby group.
	Policy furigana.Policy
	// RejectOverlaps turns overlap warnings into a returned error.
	RejectOverlaps bool

	LegacyOffset    time.Duration
	CartridgeOffset time.Duration

	// Fonts is the font file used for bare JOY-U2 input, raw or LZSS
	// compressed.
	Fonts []byte

	Logger *slog.Logger
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Schema:          record.SchemaLegacy,
		Radius:          furigana.DefaultRadius,
		Policy:          furigana.PolicyNearest,
		CartridgeOffset: DefaultCartridgeOffset,
	}
}

func (o Options) validate() error {
	if o.Schema == record.SchemaCartridge {
		return fmt.Errorf("schema %s is selected by the file format", o.Schema)
	}
	if o.SizeVariant < 0 || o.SizeVariant >= container.SizeVariants {
		return fmt.Errorf("size variant %d outside 0..%d", o.SizeVariant, container.SizeVariants-1)
	}
	if o.Radius < 0 {
		return fmt.Errorf("furigana radius %d is negative", o.Radius)
	}
	return nil
}
