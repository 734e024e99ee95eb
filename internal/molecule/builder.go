package molecule

import (
	"fmt"
	"strings"

	"kashi/internal/furigana"
	"kashi/internal/record"
	"kashi/internal/textcodec"
)

// Glyph is a positioned token. Ruby indexes Line.Groups or is -1; Group is
// set when the token merged several glyphs under one ruby group.
type Glyph struct {
	Text        string
	Left, Right int
	Ruby        int
	Group       bool
}

// Line is a processed block.
type Line struct {
	Index   int
	X, Y    int
	Instant bool
	Style   record.StyleKey

	// Tokens are the display tokens the source string was built from.
	Tokens []Glyph
	Groups []furigana.Group
	// Unassigned lists ruby groups no glyph took.
	Unassigned []int
	Source     string
	// Beats are the pixel positions timing is reconstructed for.
	Beats []int
}

// Text is the plain base text of the line.
func (l Line) Text() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Builder processes blocks with one codec.
type Builder struct {
	Codec   textcodec.Strategy
	Aligner furigana.Aligner
}

// BuildAll processes every block in order, marks row breaks and trims the
// sources.
func (b *Builder) BuildAll(blocks []record.Block) ([]Line, error) {
	lines := make([]Line, 0, len(blocks))
	for i, block := range blocks {
		line, err := b.Build(i, block)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if i > 0 {
			prev := &lines[i-1]
			if prev.Y != line.Y || prev.X >= line.X {
				prev.Source += "$"
			}
		}
		lines = append(lines, line)
	}
	for i := range lines {
		lines[i].Source = strings.TrimSpace(lines[i].Source)
	}
	return lines, nil
}

// Build processes one block. The source string is left untrimmed.
func (b *Builder) Build(index int, block record.Block) (Line, error) {
	line := Line{
		Index:   index,
		X:       block.X,
		Y:       block.Y,
		Instant: block.Instant(),
		Style:   block.Style(),
	}

	bases, err := b.place(block)
	if err != nil {
		return Line{}, err
	}
	groups, err := b.groups(block)
	if err != nil {
		return Line{}, err
	}

	aligned := b.Aligner.Align(bases, groups)
	line.Groups = aligned.Groups
	line.Unassigned = aligned.Unassigned
	line.Tokens = mergeDisplay(bases, aligned.Ruby)
	line.Source = source(line.Tokens, line.Groups)
	line.Beats = beats(mergeTiming(line.Tokens), line.Groups)
	return line, nil
}

// place decodes the glyphs, lays them out from the block origin and drops
// leading whitespace.
func (b *Builder) place(block record.Block) ([]furigana.Base, error) {
	x := block.X
	bases := make([]furigana.Base, 0, len(block.Glyphs))
	for i, g := range block.Glyphs {
		text, err := b.Codec.DecodeGlyph(g.Code)
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", i, err)
		}
		w, err := b.Codec.GlyphWidth(g)
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", i, err)
		}
		bases = append(bases, furigana.Base{Text: text, Left: x, Right: x + w})
		x += w
	}
	for len(bases) > 0 && strings.TrimSpace(bases[0].Text) == "" {
		bases = bases[1:]
	}
	return bases, nil
}

func (b *Builder) groups(block record.Block) ([]furigana.Group, error) {
	groups := make([]furigana.Group, 0, len(block.Furigana))
	for i, f := range block.Furigana {
		text, err := textcodec.DecodeString(b.Codec, f.Codes)
		if err != nil {
			return nil, fmt.Errorf("furigana %d: %w", i, err)
		}
		w, err := b.Codec.FuriganaWidth(f.Codes)
		if err != nil {
			return nil, fmt.Errorf("furigana %d: %w", i, err)
		}
		groups = append(groups, furigana.NewGroup(text, block.X+f.X, w))
	}
	return groups, nil
}

// mergeDisplay joins glyphs sharing a ruby group and folds small kana into
// a preceding token that carries no ruby.
func mergeDisplay(bases []furigana.Base, ruby []int) []Glyph {
	tokens := make([]Glyph, 0, len(bases))
	for i, base := range bases {
		last := len(tokens) - 1
		switch {
		case ruby[i] >= 0 && last >= 0 && tokens[last].Ruby == ruby[i]:
			tokens[last].Text += base.Text
			tokens[last].Right = base.Right
			tokens[last].Group = true
		case furigana.AllCombining(base.Text) && last >= 0 && tokens[last].Ruby < 0:
			tokens[last].Text += base.Text
			tokens[last].Right = base.Right
		default:
			tokens = append(tokens, Glyph{
				Text:  base.Text,
				Left:  base.Left,
				Right: base.Right,
				Ruby:  ruby[i],
			})
		}
	}
	return tokens
}

func source(tokens []Glyph, groups []furigana.Group) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.Group {
			b.WriteString("{" + Escape(t.Text) + "}")
		} else {
			b.WriteString(Escape(t.Text))
		}
		if t.Ruby >= 0 {
			b.WriteString("(" + Escape(groups[t.Ruby].Text) + ")")
		}
	}
	return b.String()
}

// mergeTiming folds tokens made only of small kana into the previous token,
// ignoring ruby, so they never start a beat of their own.
func mergeTiming(tokens []Glyph) []Glyph {
	out := make([]Glyph, 0, len(tokens))
	for _, t := range tokens {
		if last := len(out) - 1; last >= 0 && furigana.AllCombining(t.Text) {
			out[last].Text += t.Text
			out[last].Right = t.Right
			continue
		}
		out = append(out, t)
	}
	return out
}

// beats returns one position per token left edge, evenly spaced interior
// positions for multi-beat ruby, and the right edge of the last token.
func beats(tokens []Glyph, groups []furigana.Group) []int {
	if len(tokens) == 0 {
		return nil
	}
	var out []int
	for _, t := range tokens {
		out = append(out, t.Left)
		if t.Ruby < 0 {
			continue
		}
		count := groups[t.Ruby].Beats
		step := float64(t.Right-t.Left) / float64(count)
		for i := 1; i < count; i++ {
			out = append(out, int(float64(t.Left)+step*float64(i)))
		}
	}
	return append(out, tokens[len(tokens)-1].Right)
}
