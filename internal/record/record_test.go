package record_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kashi/internal/container"
	"kashi/internal/decodeerr"
	"kashi/internal/record"
	"kashi/internal/testsupport"
)

func fixtureSong() testsupport.Song {
	song := testsupport.Song{
		Title:        "桜の歌",
		Artist:       "歌手",
		Writer:       "作詞者",
		Composer:     "作曲者",
		TitleKana:    "サクラノウタ",
		ArtistKana:   "カシュ",
		JASRAC:       "123-4567-8",
		Duration:     245,
		VocalTracks:  0x3,
		RhythmTracks: 0x100,
		Blocks: []testsupport.Block{
			{
				X: 64, Y: 300, PreFill: 1, PostFill: 2, PreBorder: 3, PostBorder: 4,
				Glyphs:   testsupport.LegacyGlyphs("桜が", 48),
				Furigana: []testsupport.Furigana{{X: 0, Codes: testsupport.SJISCodes("さくら")}},
			},
			{Flags: record.InstantFlags, X: 64, Y: 360},
		},
		Events: []testsupport.Event{
			testsupport.Start(1500, 5, true),
			{Time: 1700, Payload: []byte{0xc0}},
			testsupport.SetSpeed(2000, 120, false),
		},
	}
	song.Colors[1] = testsupport.RGB15(31, 0, 0)
	song.Colors[2] = testsupport.RGB15(0, 31, 16)
	return song
}

func mustOpen(t *testing.T, data []byte) *container.Container {
	t.Helper()
	c, err := container.Open(data)
	if err != nil {
		t.Fatalf("container.Open: %v", err)
	}
	return c
}

func mustSection(t *testing.T, c *container.Container, name string) container.RawSection {
	t.Helper()
	sec, err := c.MustSection(name)
	if err != nil {
		t.Fatalf("section %s: %v", name, err)
	}
	return sec
}

func TestReadMetadataJoy02(t *testing.T) {
	c := mustOpen(t, fixtureSong().Joy02())
	meta, err := record.ReadMetadata(mustSection(t, c, container.SectionMetadata), record.SchemaLegacy)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	want := record.Metadata{
		Type:         1,
		Title:        "桜の歌",
		Artist:       "歌手",
		Writer:       "作詞者",
		Composer:     "作曲者",
		TitleKana:    "サクラノウタ",
		ArtistKana:   "カシュ",
		JASRAC:       "123-4567-8",
		Duration:     245,
		VocalTracks:  0x3,
		RhythmTracks: 0x100,
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMetadataCartridgeHasNoTrackFields(t *testing.T) {
	c := mustOpen(t, fixtureSong().JoyU2())
	meta, err := record.ReadMetadata(mustSection(t, c, container.SectionMetadata), record.SchemaCartridge)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta.Title != "桜の歌" || meta.ArtistKana != "カシュ" {
		t.Fatalf("unexpected strings %+v", meta)
	}
	if meta.Duration != 0 || meta.VocalTracks != 0 {
		t.Fatalf("cartridge metadata should not carry track fields: %+v", meta)
	}
}

func TestReadMetadataStringOutOfRange(t *testing.T) {
	sec := container.RawSection{Name: "metadata", Offset: 0x40, Data: make([]byte, 28)}
	sec.Data[2] = 0xff // title offset past the end
	_, err := record.ReadMetadata(sec, record.SchemaLegacy)
	if !errors.Is(err, decodeerr.ErrTruncated) {
		t.Fatalf("expected truncated error, got %v", err)
	}
}

func TestReadLyricsLegacy(t *testing.T) {
	c := mustOpen(t, fixtureSong().Joy02())
	lyr, err := record.ReadLyrics(mustSection(t, c, container.SectionLyrics), record.SchemaLegacy)
	if err != nil {
		t.Fatalf("ReadLyrics: %v", err)
	}
	if lyr.Palette[1] != (record.Color{R: 31}) || lyr.Palette[2].Hex() != "00ff83" {
		t.Fatalf("unexpected palette %+v", lyr.Palette[:3])
	}
	if len(lyr.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(lyr.Blocks))
	}
	first := lyr.Blocks[0]
	if first.X != 64 || first.Y != 300 || first.Instant() {
		t.Fatalf("unexpected first block %+v", first)
	}
	if first.Style() != (record.StyleKey{PreFill: 1, PostFill: 2, PreBorder: 3, PostBorder: 4}) {
		t.Fatalf("style = %+v", first.Style())
	}
	wantGlyphs := []record.Glyph{
		{Code: testsupport.SJISCodes("桜")[0], Width: 48},
		{Code: testsupport.SJISCodes("が")[0], Width: 48},
	}
	if diff := cmp.Diff(wantGlyphs, first.Glyphs); diff != "" {
		t.Fatalf("glyph mismatch (-want +got):\n%s", diff)
	}
	wantFuri := []record.Furigana{{X: 0, Codes: testsupport.SJISCodes("さくら")}}
	if diff := cmp.Diff(wantFuri, first.Furigana); diff != "" {
		t.Fatalf("furigana mismatch (-want +got):\n%s", diff)
	}
	if !lyr.Blocks[1].Instant() {
		t.Fatal("second block should be instant")
	}
	if int(first.Size) != lyr.Blocks[1].Offset-first.Offset {
		t.Fatalf("block size %d does not match record span %d", first.Size, lyr.Blocks[1].Offset-first.Offset)
	}
}

func TestReadLyricsTrailingPadding(t *testing.T) {
	c := mustOpen(t, fixtureSong().Joy02())
	sec := mustSection(t, c, container.SectionLyrics)
	sec.Data = append(sec.Data, 0, 0, 0)

	lyr, err := record.ReadLyrics(sec, record.SchemaLegacy)
	if err != nil {
		t.Fatalf("legacy schema should skip padding: %v", err)
	}
	if len(lyr.Blocks) != 2 {
		t.Fatalf("got %d blocks", len(lyr.Blocks))
	}

	if _, err := record.ReadLyrics(sec, record.SchemaRevision); !errors.Is(err, decodeerr.ErrFormat) {
		t.Fatalf("revision schema: expected format error, got %v", err)
	}
}

func TestReadLyricsCutBlock(t *testing.T) {
	c := mustOpen(t, fixtureSong().Joy02())
	sec := mustSection(t, c, container.SectionLyrics)
	// cut into the furigana codes of the first block
	sec.Data = sec.Data[:len(sec.Data)-17]

	if _, err := record.ReadLyrics(sec, record.SchemaLegacy); !errors.Is(err, decodeerr.ErrTruncated) {
		t.Fatalf("legacy schema: expected truncated error, got %v", err)
	}
	_, err := record.ReadLyrics(sec, record.SchemaRevision)
	var ferr *decodeerr.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("revision schema: expected format error, got %v", err)
	}
	if ferr.Section != container.SectionLyrics {
		t.Fatalf("section = %q", ferr.Section)
	}
}

func TestReadLyricsRevisionMatchesLegacy(t *testing.T) {
	c := mustOpen(t, fixtureSong().Joy02())
	sec := mustSection(t, c, container.SectionLyrics)
	legacy, err := record.ReadLyrics(sec, record.SchemaLegacy)
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	revision, err := record.ReadLyrics(sec, record.SchemaRevision)
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if diff := cmp.Diff(legacy, revision); diff != "" {
		t.Fatalf("schemas disagree on well-formed input:\n%s", diff)
	}
}

func TestReadLyricsCartridge(t *testing.T) {
	song := fixtureSong()
	song.Blocks[0].Glyphs = []testsupport.Glyph{{Code: 0}, {Code: 1}}
	c := mustOpen(t, song.JoyU2())

	lyr, err := record.ReadLyrics(mustSection(t, c, container.LyricsName(1)), record.SchemaCartridge)
	if err != nil {
		t.Fatalf("ReadLyrics: %v", err)
	}
	block := lyr.Blocks[0]
	if block.AltX != 64 || block.AltY != 300 {
		t.Fatalf("alt position = %d,%d", block.AltX, block.AltY)
	}
	want := []record.Glyph{{Code: 0}, {Code: 1}}
	if diff := cmp.Diff(want, block.Glyphs); diff != "" {
		t.Fatalf("glyph mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEvents(t *testing.T) {
	want := []struct {
		time    int64
		payload []byte
	}{
		{1500, []byte{0x00, 5}},
		{1700, []byte{0xc0}},
		{2000, []byte{0x0d, 120}},
	}
	cases := []struct {
		name    string
		data    []byte
		section string
		schema  record.Schema
	}{
		{"joy02", fixtureSong().Joy02(), container.SectionTiming, record.SchemaLegacy},
		{"joyu2", fixtureSong().JoyU2(), container.TimingName(0), record.SchemaCartridge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := mustOpen(t, tc.data)
			events, err := record.ReadEvents(mustSection(t, c, tc.section), tc.schema)
			if err != nil {
				t.Fatalf("ReadEvents: %v", err)
			}
			if len(events) != len(want) {
				t.Fatalf("got %d events, want %d", len(events), len(want))
			}
			for i, ev := range events {
				if ev.Time != want[i].time || !cmp.Equal(ev.Payload, want[i].payload) {
					t.Fatalf("event %d = %d %v, want %d %v", i, ev.Time, ev.Payload, want[i].time, want[i].payload)
				}
			}
			if op, ok := events[1].Opcode(); !ok || op != 0xc0 {
				t.Fatalf("Opcode = %#x, %v", op, ok)
			}
		})
	}
}

func TestReadEventsLargeDelta(t *testing.T) {
	data := append(testsupport.VarUint(300000), 2, 0x0c, 9)
	data = append(data, testsupport.VarUint(5)...)
	data = append(data, 0)
	sec := container.RawSection{Name: "timing.0", Data: data}

	events, err := record.ReadEvents(sec, record.SchemaCartridge)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 || events[0].Time != 300000 || events[1].Time != 300005 {
		t.Fatalf("unexpected events %+v", events)
	}
	if _, ok := events[1].Opcode(); ok {
		t.Fatal("empty payload should have no opcode")
	}
}

func TestReadEventsTruncatedPayload(t *testing.T) {
	sec := container.RawSection{Name: "timing", Offset: 0x80, Data: []byte{0xe8, 0x03, 0, 0, 3, 0x00}}
	_, err := record.ReadEvents(sec, record.SchemaLegacy)
	var trunc *decodeerr.TruncatedDataError
	if !errors.As(err, &trunc) {
		t.Fatalf("expected truncated error, got %v", err)
	}
	if trunc.Offset != 0x85 {
		t.Fatalf("offset = %#x", trunc.Offset)
	}
}

func TestReadFonts(t *testing.T) {
	glyphs := []testsupport.FontGlyph{
		{Code: 0xa422, Advance: 24, Size: 24, Width: 2, Height: 1, Stride: 1, Data: []byte{0xf0}},
		{Code: 0x88a0, Advance: 48, Size: 48, Width: 4, Height: 2, Stride: 2, Data: []byte{1, 2, 3, 4}},
	}
	sec := container.RawSection{Name: container.SectionFonts, Data: testsupport.FontFile(glyphs)}
	ff, err := record.ReadFonts(sec)
	if err != nil {
		t.Fatalf("ReadFonts: %v", err)
	}
	for i := range ff.Fonts {
		if len(ff.Fonts[i].Entries) != len(glyphs) {
			t.Fatalf("font %d has %d entries", i, len(ff.Fonts[i].Entries))
		}
	}
	entry, ok := ff.Fonts[0].Entry(1)
	if !ok {
		t.Fatal("entry 1 missing")
	}
	if entry.Code != 0x88a0 || entry.Advance != 48 || entry.Width != 4 || entry.Height != 2 || entry.Stride != 2 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !cmp.Equal(entry.Data, []byte{1, 2, 3, 4}) {
		t.Fatalf("data = %v", entry.Data)
	}
	if _, ok := ff.Fonts[0].Entry(2); ok {
		t.Fatal("entry 2 should be out of range")
	}
}

func TestReadFontsTruncated(t *testing.T) {
	data := testsupport.FontFile([]testsupport.FontGlyph{{Code: 1, Data: []byte{1, 2, 3}}})
	sec := container.RawSection{Name: container.SectionFonts, Data: data[:len(data)-1]}
	if _, err := record.ReadFonts(sec); !errors.Is(err, decodeerr.ErrTruncated) {
		t.Fatalf("expected truncated error, got %v", err)
	}
}

func TestReadFontsOversizedTable(t *testing.T) {
	data := testsupport.FontFile(nil)
	// table_size of the first font, 24 bytes of header then two u16 and the table offset
	binary.BigEndian.PutUint32(data[24+8:], 0xfffffffc)
	sec := container.RawSection{Name: container.SectionFonts, Data: data}
	_, err := record.ReadFonts(sec)
	var trunc *decodeerr.TruncatedDataError
	if !errors.As(err, &trunc) {
		t.Fatalf("expected truncated error, got %v", err)
	}
	if trunc.Offset != 24+12 {
		t.Fatalf("offset = %d, want %d", trunc.Offset, 24+12)
	}
}

func TestParseSchema(t *testing.T) {
	for input, want := range map[string]record.Schema{
		"":          record.SchemaLegacy,
		"Legacy":    record.SchemaLegacy,
		"revision":  record.SchemaRevision,
		"cartridge": record.SchemaCartridge,
	} {
		got, err := record.ParseSchema(input)
		if err != nil || got != want {
			t.Fatalf("ParseSchema(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := record.ParseSchema("v3"); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}
