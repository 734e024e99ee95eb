package lyrics_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"kashi/internal/decodeerr"
	"kashi/internal/lyrics"
	"kashi/internal/molecule"
	"kashi/internal/record"
	"kashi/internal/timing"
)

func palette() record.Palette {
	var p record.Palette
	p[0] = record.ColorFromRGB15(0x7fff)
	p[1] = record.ColorFromRGB15(0x7c00)
	p[2] = record.ColorFromRGB15(0x03e0)
	p[3] = record.ColorFromRGB15(0x001f)
	return p
}

func song() lyrics.Song {
	red := record.StyleKey{PreFill: 0, PostFill: 1, PreBorder: 3, PostBorder: 3}
	green := record.StyleKey{PreFill: 0, PostFill: 2, PreBorder: 3, PostBorder: 3}
	return lyrics.Song{
		Metadata: record.Metadata{
			Title: "夜空", TitleKana: "よぞら",
			Artist: "星野", ArtistKana: "ほしの",
			Composer: "月田",
		},
		Palette: palette(),
		Lines: []molecule.Line{
			{Index: 0, Y: 300, Instant: true, Style: red},
			{Index: 1, Y: 300, Style: red, Source: "{今日}(きょう)は", Beats: []int{0, 48, 72}},
			{Index: 2, Y: 360, Style: green, Source: "空$", Beats: []int{0, 48}},
		},
		Spans: []timing.Span{
			{Start: 1500 * time.Millisecond},
			{Start: 1500 * time.Millisecond, Deltas: []time.Duration{250 * time.Millisecond, 1250 * time.Millisecond}},
			{Start: 4 * time.Second, Deltas: []time.Duration{time.Second}},
		},
		Offset: 200 * time.Millisecond,
	}
}

const wantDocument = `[meta]
title=夜空
title@k=よぞら
artist=星野
artist@k=ほしの
composer=月田

[timing]
offset=0.200

[style A]
colors=ffffff,0000ff,000000
colors_on=ff0000,0000ff,000000

[style B]
colors=ffffff,0000ff,000000
colors_on=00ff00,0000ff,000000

[variant japanese]
name=日本語
tags=A,B
A.style=A
B.style=B

[lyrics]
@1.500
A: 

@1.500 0.250 1.250
A: {今日}(きょう)は

@4.000 1.000
B: 空$
`

func TestAssembleAndSerialize(t *testing.T) {
	doc, err := lyrics.Assemble(song())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}
	if diff := cmp.Diff(wantDocument, buf.String()); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	first, err := lyrics.Assemble(song())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := lyrics.Assemble(song())
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if !bytes.Equal(first.Bytes(), again.Bytes()) {
			t.Fatal("serialization differs between equal inputs")
		}
	}
}

func TestStyleTableFirstSeenOrder(t *testing.T) {
	table := lyrics.NewStyleTable()
	keys := []record.StyleKey{{PostFill: 4}, {PostFill: 1}, {PostFill: 4}, {PostFill: 2}}
	var tags []string
	for _, k := range keys {
		tags = append(tags, table.Tag(k))
	}
	if diff := cmp.Diff([]string{"A", "B", "A", "C"}, tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 3 {
		t.Fatalf("Len = %d", table.Len())
	}
}

func TestStyleTableColorOutsidePalette(t *testing.T) {
	table := lyrics.NewStyleTable()
	table.Tag(record.StyleKey{PostBorder: 15})
	if _, err := table.Resolve(palette()); !errors.Is(err, decodeerr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestAssembleRejectsMismatchedSpans(t *testing.T) {
	s := song()
	s.Spans = s.Spans[:2]
	if _, err := lyrics.Assemble(s); !errors.Is(err, decodeerr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}

	s = song()
	s.Spans[2].Deltas = nil
	if _, err := lyrics.Assemble(s); !errors.Is(err, decodeerr.ErrFormat) {
		t.Fatalf("expected format error for delta count, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	doc := &lyrics.Document{Compounds: []lyrics.Compound{
		{Block: 0, Row: 300, Start: 0, Timing: []time.Duration{2 * time.Second}},
		{Block: 1, Row: 360, Start: time.Second, Timing: []time.Duration{time.Second}},
		{Block: 2, Row: 300, Instant: true, Start: time.Second},
		{Block: 3, Row: 300, Start: 1500 * time.Millisecond, Timing: []time.Duration{time.Second}},
		{Block: 4, Row: 360, Start: 2 * time.Second, Timing: []time.Duration{time.Second}},
	}}
	got := doc.Overlaps()
	want := []*decodeerr.OverlapError{{First: 0, Second: 3, Row: 300, OverlapMS: 500}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("overlaps mismatch (-want +got):\n%s", diff)
	}
}

func TestCompoundEnd(t *testing.T) {
	c := lyrics.Compound{Start: time.Second, Timing: []time.Duration{time.Second, 500 * time.Millisecond}}
	if c.End() != 2500*time.Millisecond {
		t.Fatalf("End = %v", c.End())
	}
}

func TestMetaSkipsEmptyValues(t *testing.T) {
	doc := &lyrics.Document{Meta: lyrics.MetaFields(record.Metadata{Title: "歌"})}
	out := string(doc.Bytes())
	if !strings.HasPrefix(out, "[meta]\ntitle=歌\n\n[timing]\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
