package decode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"kashi/internal/container"
	"kashi/internal/decodeerr"
	"kashi/internal/furigana"
	"kashi/internal/logging"
	"kashi/internal/lyrics"
	"kashi/internal/molecule"
	"kashi/internal/record"
	"kashi/internal/textcodec"
	"kashi/internal/timing"
)

// parts is the section set and codec selected for one file.
type parts struct {
	schema record.Schema
	codec  textcodec.Strategy
	meta   container.RawSection
	lyrics container.RawSection
	timing container.RawSection
}

// Decode converts one file into a document. Warnings are returned with the
// document; any fatal finding returns no document.
func Decode(data []byte, opts Options) (*lyrics.Document, []Warning, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, fmt.Errorf("decode options: %w", err)
	}
	logger := logging.NewComponentLogger(opts.Logger, "decode")

	c, err := container.Open(data)
	if err != nil {
		return nil, nil, fmt.Errorf("open container: %w", err)
	}
	logger.Debug("container resolved",
		logging.String("format", c.Format.String()),
		logging.Int("sections", len(c.Sections())),
	)

	p, err := selectParts(c, opts)
	if err != nil {
		return nil, nil, err
	}

	meta, err := record.ReadMetadata(p.meta, p.schema)
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata: %w", err)
	}
	lyr, err := record.ReadLyrics(p.lyrics, p.schema)
	if err != nil {
		return nil, nil, fmt.Errorf("read lyrics: %w", err)
	}
	events, err := record.ReadEvents(p.timing, p.schema)
	if err != nil {
		return nil, nil, fmt.Errorf("read timing: %w", err)
	}
	logger.Debug("records read",
		logging.String("schema", p.schema.String()),
		logging.String("codec", p.codec.Name()),
		logging.Int("blocks", len(lyr.Blocks)),
		logging.Int("events", len(events)),
	)

	builder := &molecule.Builder{
		Codec:   p.codec,
		Aligner: furigana.Aligner{Radius: opts.Radius, Policy: opts.Policy},
	}
	lines, err := builder.BuildAll(lyr.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("build lines: %w", err)
	}

	var warnings []Warning
	for _, line := range lines {
		for _, g := range line.Unassigned {
			group := line.Groups[g]
			warnings = append(warnings, Warning{
				Kind:  WarnUnassignedFurigana,
				Block: line.Index,
				Err:   fmt.Errorf("furigana %q at x=%d matched no glyph", group.Text, group.Left),
			})
		}
	}

	tlines := make([]timing.Line, len(lines))
	for i, line := range lines {
		tlines[i] = timing.Line{X: line.X, Instant: line.Instant, Beats: line.Beats}
	}
	res, err := timing.Reconstruct(events, tlines)
	if err != nil {
		return nil, nil, fmt.Errorf("reconstruct timing: %w", err)
	}
	logIgnored(logger, res.Ignored)

	offset := opts.LegacyOffset
	if c.Format.Cartridge() {
		offset = opts.CartridgeOffset
	}
	doc, err := lyrics.Assemble(lyrics.Song{
		Metadata: meta,
		Palette:  lyr.Palette,
		Lines:    lines,
		Spans:    res.Spans,
		Offset:   offset,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("assemble document: %w", err)
	}

	for _, overlap := range doc.Overlaps() {
		if opts.RejectOverlaps {
			return nil, nil, overlap
		}
		warnings = append(warnings, overlapWarning(overlap))
	}
	for _, w := range warnings {
		logging.WarnWithContext(logger, "decode warning", w.Kind,
			logging.Int("block", w.Block),
			logging.Error(w.Err),
		)
	}
	return doc, warnings, nil
}

// DecodeFile reads path and decodes it.
func DecodeFile(path string, opts Options) (*lyrics.Document, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data, opts)
}

func selectParts(c *container.Container, opts Options) (parts, error) {
	var p parts
	var err error
	if !c.Format.Cartridge() {
		p.schema = opts.Schema
		p.codec = textcodec.Legacy{}
		if p.meta, err = c.MustSection(container.SectionMetadata); err != nil {
			return p, err
		}
		if p.lyrics, err = c.MustSection(container.SectionLyrics); err != nil {
			return p, err
		}
		if p.timing, err = c.MustSection(container.SectionTiming); err != nil {
			return p, err
		}
		return p, nil
	}

	p.schema = record.SchemaCartridge
	fonts, err := loadFonts(c, opts.Fonts)
	if err != nil {
		return p, err
	}
	p.codec = textcodec.NewFontTable(&fonts.Fonts[0])
	if p.meta, err = c.MustSection(container.SectionMetadata); err != nil {
		return p, err
	}
	if p.lyrics, err = c.MustSection(container.LyricsName(opts.SizeVariant)); err != nil {
		return p, err
	}
	if p.timing, err = c.MustSection(container.TimingName(opts.SizeVariant)); err != nil {
		return p, err
	}
	return p, nil
}

// loadFonts reads the container's font file, falling back to external font
// data for bare JOY-U2 input.
func loadFonts(c *container.Container, external []byte) (*record.FontFile, error) {
	sec, ok := c.Section(container.SectionFonts)
	if !ok {
		if len(external) == 0 {
			return nil, decodeerr.Formatf(container.SectionFonts, "%s input needs a separate font file", c.Format)
		}
		data := external
		if bytes.HasPrefix(data, []byte(container.MagicLZSS)) {
			out, err := container.Decompress(data, container.SectionFonts, 0)
			if err != nil {
				return nil, fmt.Errorf("decompress fonts: %w", err)
			}
			data = out
		}
		sec = container.RawSection{Name: container.SectionFonts, Data: data}
	}
	fonts, err := record.ReadFonts(sec)
	if err != nil {
		return nil, fmt.Errorf("read fonts: %w", err)
	}
	return fonts, nil
}

func logIgnored(logger *slog.Logger, ignored map[byte]int) {
	if len(ignored) == 0 || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	ops := make([]int, 0, len(ignored))
	for op := range ignored {
		ops = append(ops, int(op))
	}
	sort.Ints(ops)
	for _, op := range ops {
		logger.Debug("timing opcode ignored",
			logging.String("opcode", fmt.Sprintf("0x%02x", op)),
			logging.Int("count", ignored[byte(op)]),
		)
	}
}
