package molecule_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kashi/internal/decodeerr"
	"kashi/internal/furigana"
	"kashi/internal/molecule"
	"kashi/internal/record"
	"kashi/internal/testsupport"
	"kashi/internal/textcodec"
)

func glyphs(text string, width int) []record.Glyph {
	codes := testsupport.SJISCodes(text)
	out := make([]record.Glyph, len(codes))
	for i, code := range codes {
		out[i] = record.Glyph{Code: code, Width: width}
	}
	return out
}

func ruby(x int, text string) record.Furigana {
	return record.Furigana{X: x, Codes: testsupport.SJISCodes(text)}
}

func legacyBuilder() *molecule.Builder {
	return &molecule.Builder{Codec: textcodec.Legacy{}}
}

func TestBuildGroupedRuby(t *testing.T) {
	block := record.Block{
		X: 100, Y: 300,
		Glyphs:   glyphs("今日は", 48),
		Furigana: []record.Furigana{ruby(0, "きょう")},
	}
	line, err := legacyBuilder().Build(0, block)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if line.Source != "{今日}(きょう)は" {
		t.Fatalf("source = %q", line.Source)
	}
	if diff := cmp.Diff([]int{100, 148, 196, 244}, line.Beats); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
	if line.Text() != "今日は" {
		t.Fatalf("text = %q", line.Text())
	}
}

func TestBuildCombiningWithoutRuby(t *testing.T) {
	line, err := legacyBuilder().Build(0, record.Block{Glyphs: glyphs("しゃしん", 24)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if line.Source != "しゃしん" {
		t.Fatalf("source = %q", line.Source)
	}
	if len(line.Tokens) != 3 || line.Tokens[0].Text != "しゃ" {
		t.Fatalf("tokens = %+v", line.Tokens)
	}
	if diff := cmp.Diff([]int{0, 48, 72, 96}, line.Beats); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSmallKanaAfterRubyStaysSeparate(t *testing.T) {
	block := record.Block{
		Glyphs:   append(glyphs("漢", 48), glyphs("ゃ", 24)...),
		Furigana: []record.Furigana{ruby(0, "かん")},
	}
	line, err := legacyBuilder().Build(0, block)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if line.Source != "漢(かん)ゃ" {
		t.Fatalf("source = %q", line.Source)
	}
	if len(line.Tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(line.Tokens))
	}
	// the small kana still joins the ruby token for timing
	if diff := cmp.Diff([]int{0, 36, 72}, line.Beats); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFuriganaPolicies(t *testing.T) {
	// ゆめ is centered 10px from 夢 and み 8px from 見; each search reaches
	// both glyphs.
	block := record.Block{
		Glyphs:   glyphs("夢見", 48),
		Furigana: []record.Furigana{ruby(10, "ゆめ"), ruby(52, "み")},
	}
	tests := []struct {
		policy     furigana.Policy
		source     string
		unassigned []int
	}{
		{furigana.PolicyNearest, "夢(ゆめ)見(み)", nil},
		{furigana.PolicyLastScanned, "{夢見}(み)", []int{0}},
	}
	for _, tc := range tests {
		t.Run(tc.policy.String(), func(t *testing.T) {
			b := &molecule.Builder{
				Codec:   textcodec.Legacy{},
				Aligner: furigana.Aligner{Policy: tc.policy},
			}
			line, err := b.Build(0, block)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if line.Source != tc.source {
				t.Fatalf("source = %q, want %q", line.Source, tc.source)
			}
			if diff := cmp.Diff(tc.unassigned, line.Unassigned); diff != "" {
				t.Fatalf("unassigned mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildDropsLeadingWhitespace(t *testing.T) {
	block := record.Block{X: 0, Glyphs: glyphs("　 愛", 24)}
	line, err := legacyBuilder().Build(0, block)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if line.Source != "愛" {
		t.Fatalf("source = %q", line.Source)
	}
	// the remaining glyph keeps its laid-out position
	if diff := cmp.Diff([]int{48, 72}, line.Beats); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnassignedRubyDropped(t *testing.T) {
	block := record.Block{
		Glyphs:   glyphs("あい", 48),
		Furigana: []record.Furigana{ruby(0, "x")},
	}
	line, err := legacyBuilder().Build(3, block)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if line.Source != "あい" {
		t.Fatalf("source = %q", line.Source)
	}
	if diff := cmp.Diff([]int{0}, line.Unassigned); diff != "" {
		t.Fatalf("unassigned mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyBlock(t *testing.T) {
	line, err := legacyBuilder().Build(0, record.Block{Flags: record.InstantFlags})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !line.Instant || line.Source != "" || line.Beats != nil {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestBuildAllRowBreaks(t *testing.T) {
	blocks := []record.Block{
		{X: 100, Y: 300, Glyphs: glyphs("あ", 24)},
		{X: 300, Y: 300, Glyphs: glyphs("い ", 24)},
		{X: 100, Y: 300, Glyphs: glyphs("う", 24)},
		{X: 100, Y: 360, Glyphs: glyphs("え ", 24)},
	}
	lines, err := legacyBuilder().BuildAll(blocks)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	got := make([]string, len(lines))
	for i, l := range lines {
		got[i] = l.Source
	}
	want := []string{"あ", "い $", "う$", "え"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAllWrapsCodecErrors(t *testing.T) {
	b := &molecule.Builder{Codec: textcodec.NewFontTable(&record.Font{})}
	_, err := b.BuildAll([]record.Block{{Glyphs: []record.Glyph{{Code: 4}}}})
	if !errors.Is(err, decodeerr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}

	_, err = legacyBuilder().BuildAll([]record.Block{{Glyphs: []record.Glyph{{Code: 0xffff}}}})
	if !errors.Is(err, decodeerr.ErrUnmappedGlyph) {
		t.Fatalf("expected unmapped glyph error, got %v", err)
	}
}

func TestBuildFontTableWidths(t *testing.T) {
	font := &record.Font{Entries: []record.FontEntry{
		{Code: 0x889f, Advance: 40, Width: 36}, // 亜
		{Code: 0xa022, Advance: 30, Width: 20}, // あ
	}}
	b := &molecule.Builder{Codec: textcodec.NewFontTable(font)}
	block := record.Block{
		X:        10,
		Glyphs:   []record.Glyph{{Code: 0}, {Code: 1}},
		Furigana: []record.Furigana{{X: 0, Codes: []uint16{1}}},
	}
	line, err := b.Build(0, block)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if line.Source != "亜(あ)あ" {
		t.Fatalf("source = %q", line.Source)
	}
	if diff := cmp.Diff([]int{10, 50, 80}, line.Beats); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"plain":  "plain",
		"(A)":    `\(A\)`,
		"{x}$^":  `\{x\}\$\^`,
		`a\b`:    `a\\b`,
		"（全角）":   `\（全角\）`,
		"｛＄＾＼｝": `\｛\＄\＾\＼\｝`,
	}
	for in, want := range tests {
		if got := molecule.Escape(in); got != want {
			t.Fatalf("Escape(%q) = %q, want %q", in, got, want)
		}
	}
}
