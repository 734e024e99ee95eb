package decode

import (
	"fmt"

	"kashi/internal/container"
	"kashi/internal/lyrics"
	"kashi/internal/record"
)

// Section describes one container section without its payload.
type Section struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
}

// Report summarizes a file's layout and record counts.
type Report struct {
	Format   string            `json:"format"`
	Digest   string            `json:"digest"`
	Header   []container.Field `json:"header"`
	Sections []Section         `json:"sections"`

	Schema string          `json:"schema,omitempty"`
	Codec  string          `json:"codec,omitempty"`
	Meta   record.Metadata `json:"meta"`

	Blocks   int            `json:"blocks"`
	Instant  int            `json:"instant_blocks"`
	Glyphs   int            `json:"glyphs"`
	Furigana int            `json:"furigana"`
	Events   int            `json:"events"`
	Styles   []lyrics.Style `json:"styles,omitempty"`
}

// Inspect resolves the container and reads its records without building a
// document. The report is filled as far as reading got; the error names the
// step that failed.
func Inspect(data []byte, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	c, err := container.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	rep := &Report{
		Format: c.Format.String(),
		Digest: Digest(data),
		Header: c.Header,
	}
	for _, s := range c.Sections() {
		rep.Sections = append(rep.Sections, Section{
			Name:   s.Name,
			Parent: s.Parent,
			Offset: s.Offset,
			Size:   len(s.Data),
		})
	}

	p, err := selectParts(c, opts)
	if err != nil {
		return rep, err
	}
	rep.Schema = p.schema.String()
	rep.Codec = p.codec.Name()

	if rep.Meta, err = record.ReadMetadata(p.meta, p.schema); err != nil {
		return rep, fmt.Errorf("read metadata: %w", err)
	}
	lyr, err := record.ReadLyrics(p.lyrics, p.schema)
	if err != nil {
		return rep, fmt.Errorf("read lyrics: %w", err)
	}
	styles := lyrics.NewStyleTable()
	for _, b := range lyr.Blocks {
		rep.Blocks++
		rep.Glyphs += len(b.Glyphs)
		rep.Furigana += len(b.Furigana)
		if b.Instant() {
			rep.Instant++
		}
		styles.Tag(b.Style())
	}
	if rep.Styles, err = styles.Resolve(lyr.Palette); err != nil {
		return rep, err
	}

	events, err := record.ReadEvents(p.timing, p.schema)
	if err != nil {
		return rep, fmt.Errorf("read timing: %w", err)
	}
	rep.Events = len(events)
	return rep, nil
}
