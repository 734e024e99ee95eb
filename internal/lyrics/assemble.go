package lyrics

import (
	"fmt"
	"sort"
	"time"

	"kashi/internal/decodeerr"
	"kashi/internal/molecule"
	"kashi/internal/record"
	"kashi/internal/timing"
)

// Japanese is the variant every decoded song carries.
var Japanese = Variant{Key: "japanese", Name: "日本語"}

// Song collects the decoded parts a document is assembled from.
type Song struct {
	Metadata record.Metadata
	Palette  record.Palette
	Lines    []molecule.Line
	Spans    []timing.Span
	Offset   time.Duration
}

// MetaFields lists the metadata entries written for a song.
func MetaFields(m record.Metadata) []MetaField {
	return []MetaField{
		{Key: "title", Value: m.Title, Reading: m.TitleKana},
		{Key: "artist", Value: m.Artist, Reading: m.ArtistKana},
		{Key: "writer", Value: m.Writer},
		{Key: "composer", Value: m.Composer},
	}
}

// Assemble builds the document. Lines and spans are matched by index.
func Assemble(song Song) (*Document, error) {
	if len(song.Lines) != len(song.Spans) {
		return nil, decodeerr.Formatf("timing", "%d spans for %d blocks", len(song.Spans), len(song.Lines))
	}

	table := NewStyleTable()
	doc := &Document{
		Meta:      MetaFields(song.Metadata),
		Offset:    song.Offset,
		Compounds: make([]Compound, 0, len(song.Lines)),
	}
	for i, line := range song.Lines {
		span := song.Spans[i]
		want := 0
		if !line.Instant && len(line.Beats) > 0 {
			want = len(line.Beats) - 1
		}
		if len(span.Deltas) != want {
			return nil, decodeerr.Formatf("timing", "block %d: %d deltas for %d beats", i, len(span.Deltas), len(line.Beats))
		}
		doc.Compounds = append(doc.Compounds, Compound{
			Block:   line.Index,
			Row:     line.Y,
			Instant: line.Instant,
			Start:   span.Start,
			Timing:  span.Deltas,
			Style:   table.Tag(line.Style),
			Source:  line.Source,
		})
	}

	styles, err := table.Resolve(song.Palette)
	if err != nil {
		return nil, fmt.Errorf("resolve styles: %w", err)
	}
	doc.Styles = styles

	variant := Japanese
	for _, st := range styles {
		variant.Tags = append(variant.Tags, st.Tag)
	}
	sort.Strings(variant.Tags)
	doc.Variants = []Variant{variant}
	return doc, nil
}
